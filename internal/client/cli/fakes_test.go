package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
	"github.com/dmitrijs2005/gophnotes/internal/client/drafts"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type fakeAPI struct {
	mu        sync.Mutex
	notes     map[string]*models.Note
	trash     []*models.Note
	calls     []string
	nextID    int
	saveErr   error
	updateErr error
	err       error

	oldPassword string
	newPassword string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{notes: map[string]*models.Note{}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Ping(context.Context) error { return f.err }

func (f *fakeAPI) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	f.record("password")
	f.oldPassword, f.newPassword = oldPassword, newPassword
	return f.err
}

func (f *fakeAPI) CompleteOnboarding(context.Context) error {
	f.record("onboarding")
	return f.err
}

func (f *fakeAPI) ListNotes(_ context.Context, page, limit int) (*models.NotePage, error) {
	f.record(fmt.Sprintf("list %d %d", page, limit))
	if f.err != nil {
		return nil, f.err
	}
	p := &models.NotePage{CurrentPage: page, TotalPages: 1}
	for _, n := range f.notes {
		p.Notes = append(p.Notes, n)
	}
	p.TotalCount = len(p.Notes)
	return p, nil
}

func (f *fakeAPI) CreateNote(_ context.Context, in api.NoteInput) (*models.Note, error) {
	f.record("create " + in.Title)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	n := &models.Note{ID: fmt.Sprintf("n%d", f.nextID), Title: in.Title, Content: in.Content}
	f.notes[n.ID] = n
	return n, nil
}

func (f *fakeAPI) GetNote(_ context.Context, id string) (*models.Note, error) {
	f.record("get " + id)
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "note not found"}
	}
	return n, nil
}

func (f *fakeAPI) UpdateNote(_ context.Context, id string, in api.NoteInput) (*models.Note, error) {
	f.record("update " + id + " " + in.Title)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	n, ok := f.notes[id]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "note not found"}
	}
	n.Title, n.Content = in.Title, in.Content
	return n, nil
}

func (f *fakeAPI) DeleteNote(_ context.Context, id string) error {
	f.record("delete " + id)
	return f.err
}

func (f *fakeAPI) Summarize(_ context.Context, id string) (*models.Note, error) {
	f.record("summary " + id)
	if f.err != nil {
		return nil, f.err
	}
	s := "short"
	return &models.Note{ID: id, Summary: &s}, nil
}

func (f *fakeAPI) GenerateTags(_ context.Context, id string) (*models.Note, error) {
	f.record("tags " + id)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: id, Tags: []string{"go", "notes"}}, nil
}

func (f *fakeAPI) Usage(context.Context) (*models.UsageTotals, error) {
	f.record("usage")
	return &models.UsageTotals{Requests: 2, PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, f.err
}

func (f *fakeAPI) ListTrash(_ context.Context, page, limit int) (*models.TrashPage, error) {
	f.record(fmt.Sprintf("trash %d %d", page, limit))
	if f.err != nil {
		return nil, f.err
	}
	return &models.TrashPage{Notes: f.trash, TotalCount: len(f.trash), TotalPages: 1, CurrentPage: page}, nil
}

func (f *fakeAPI) Restore(_ context.Context, id string) error {
	f.record("restore " + id)
	return f.err
}

func (f *fakeAPI) Purge(_ context.Context, id string) error {
	f.record("purge " + id)
	return f.err
}

func (f *fakeAPI) EmptyTrash(context.Context) (int64, error) {
	f.record("empty")
	return int64(len(f.trash)), f.err
}

type fakeSession struct {
	user     *models.User
	email    string
	password string
	err      error
}

func (f *fakeSession) User() *models.User { return f.user }

func (f *fakeSession) Register(_ context.Context, email string, password []byte) (*models.User, error) {
	f.email, f.password = email, string(password)
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u2", Email: email}, nil
}

func (f *fakeSession) Login(_ context.Context, email string, password []byte) (*models.User, error) {
	f.email, f.password = email, string(password)
	if f.err != nil {
		return nil, f.err
	}
	f.user = &models.User{ID: "u1", Email: email}
	return f.user, nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.user = nil
	return nil
}

func (f *fakeSession) Restore(context.Context) (*models.User, error) {
	if f.user == nil {
		return nil, common.ErrAuthenticationRequired
	}
	return f.user, nil
}

type memKV struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (k *memKV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.m[key], nil
}

func (k *memKV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}

func (k *memKV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

func (k *memKV) ListPrefix(_ context.Context, prefix string) (map[string][]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := map[string][]byte{}
	for key, v := range k.m {
		if strings.HasPrefix(key, prefix) {
			out[key] = v
		}
	}
	return out, nil
}

type testApp struct {
	*App
	api     *fakeAPI
	session *fakeSession
	store   *drafts.Store
	buf     *bytes.Buffer
}

// newTestApp returns a logged-in app reading input. Autosave timers are
// effectively disabled so saves happen on :w only.
func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	fa := newFakeAPI()
	fs := &fakeSession{user: &models.User{ID: "u1", Email: "a@example.com", Onboarded: true}}
	store := drafts.NewStore(&memKV{m: map[string][]byte{}}, logging.Discard())
	buf := &bytes.Buffer{}

	return &testApp{
		App: &App{
			api:      fa,
			session:  fs,
			drafts:   store,
			logger:   logging.Discard(),
			reader:   rdr(input),
			out:      buf,
			debounce: time.Hour,
			interval: -1,
		},
		api:     fa,
		session: fs,
		store:   store,
		buf:     buf,
	}
}

func strPtr(s string) *string { return &s }
