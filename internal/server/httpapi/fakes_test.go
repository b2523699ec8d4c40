package httpapi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

var errBoom = errors.New("boom")

const (
	userA     = "11111111-1111-1111-1111-111111111111"
	goodToken = "good-token"
)

func requireAuth(id services.Identity) error {
	if !id.Authenticated {
		return common.ErrAuthenticationRequired
	}
	return nil
}

type fakeAccounts struct {
	registerErr error
	loginErr    error
	refreshErr  error
	loggedOut   []string
}

func (f *fakeAccounts) Register(_ context.Context, email, _ string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: userA, Email: email, PasswordHash: []byte("hash")}, nil
}

func (f *fakeAccounts) Login(context.Context, string, string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeAccounts) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func (f *fakeAccounts) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeAccounts) Me(_ context.Context, id services.Identity) (*models.User, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	return &models.User{ID: id.UserID, Email: "a@example.com"}, nil
}

func (f *fakeAccounts) ChangePassword(_ context.Context, id services.Identity, _, _ string) error {
	return requireAuth(id)
}

func (f *fakeAccounts) CompleteOnboarding(_ context.Context, id services.Identity) error {
	return requireAuth(id)
}

func (f *fakeAccounts) Authenticate(token string) (services.Identity, error) {
	switch token {
	case goodToken:
		return services.User(userA), nil
	case "expired":
		return services.Anonymous, common.ErrTokenExpired
	default:
		return services.Anonymous, common.ErrInvalidToken
	}
}

type fakeNotes struct {
	err     error
	created []services.NoteInput
	page    int
	limit   int
}

func (f *fakeNotes) Create(_ context.Context, id services.Identity, in services.NoteInput) (*models.Note, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, common.ErrValidation
	}
	f.created = append(f.created, in)
	return &models.Note{ID: "n1", UserID: id.UserID, Title: in.Title, Content: in.Content, Tags: []string{}}, nil
}

func (f *fakeNotes) Get(_ context.Context, id services.Identity, noteID string) (*models.Note, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: noteID, UserID: id.UserID, Title: "t", Tags: []string{}}, nil
}

func (f *fakeNotes) List(_ context.Context, id services.Identity, page, limit int) (*models.NotePage, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	f.page, f.limit = page, limit
	return &models.NotePage{Notes: []*models.Note{}, CurrentPage: page}, nil
}

func (f *fakeNotes) Update(_ context.Context, id services.Identity, noteID string, in services.NoteInput) (*models.Note, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: noteID, UserID: id.UserID, Title: in.Title, Tags: []string{}}, nil
}

func (f *fakeNotes) Delete(_ context.Context, id services.Identity, _ string) error {
	if err := requireAuth(id); err != nil {
		return err
	}
	return f.err
}

type fakeTrash struct {
	err     error
	page    int
	limit   int
	emptied int64
}

func (f *fakeTrash) ListTrash(_ context.Context, id services.Identity, page, limit int) (*models.TrashPage, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.page, f.limit = page, limit
	return &models.TrashPage{Notes: []*models.Note{}, CurrentPage: page}, nil
}

func (f *fakeTrash) Restore(_ context.Context, id services.Identity, _ string) error {
	if err := requireAuth(id); err != nil {
		return err
	}
	return f.err
}

func (f *fakeTrash) Purge(_ context.Context, id services.Identity, _ string) error {
	if err := requireAuth(id); err != nil {
		return err
	}
	return f.err
}

func (f *fakeTrash) EmptyTrash(_ context.Context, id services.Identity) (*models.EmptyTrashResult, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.EmptyTrashResult{DeletedCount: f.emptied}, nil
}

type fakeAssistant struct {
	err   error
	since time.Time
}

func (f *fakeAssistant) Summarize(_ context.Context, id services.Identity, noteID string) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := "short"
	return &models.Note{ID: noteID, UserID: id.UserID, Summary: &s, Tags: []string{}}, nil
}

func (f *fakeAssistant) GenerateTags(_ context.Context, id services.Identity, noteID string) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: noteID, UserID: id.UserID, Tags: []string{"work", "travel"}}, nil
}

func (f *fakeAssistant) Usage(_ context.Context, _ services.Identity, since time.Time) (*models.UsageTotals, error) {
	f.since = since
	return &models.UsageTotals{Requests: 2, TotalTokens: 40}, nil
}

type fakeSweeper struct {
	mu       sync.Mutex
	calls    int
	triggers []string
	res      *models.SweepResult
	err      error
}

func (f *fakeSweeper) Run(_ context.Context, trigger string) (*models.SweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.triggers = append(f.triggers, trigger)
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}
