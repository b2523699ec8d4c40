package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/usage"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// memNotes is an in-memory notes.Repository applying the same predicates as
// the SQL implementation.
type memNotes struct {
	mu         sync.Mutex
	notes      map[string]*models.Note
	err        error
	lastOffset int
}

func newMemNotes() *memNotes {
	return &memNotes{notes: map[string]*models.Note{}}
}

func (m *memNotes) put(n *models.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.Tags == nil {
		n.Tags = []string{}
	}
	m.notes[n.ID] = n
}

func (m *memNotes) get(id string) (*models.Note, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	return n, ok
}

func (m *memNotes) filter(pred func(*models.Note) bool) []*models.Note {
	out := make([]*models.Note, 0)
	for _, n := range m.notes {
		if pred(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

func page(all []*models.Note, limit, offset int) []*models.Note {
	if offset >= len(all) {
		return make([]*models.Note, 0)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (m *memNotes) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now
	m.put(n)
	return n, nil
}

func (m *memNotes) GetActive(_ context.Context, id, userID string) (*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.get(id)
	if !ok || n.UserID != userID || n.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNotes) ListActive(_ context.Context, userID string, limit, offset int) ([]*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOffset = offset
	all := m.filter(func(n *models.Note) bool { return n.UserID == userID && n.DeletedAt == nil })
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return page(all, limit, offset), nil
}

func (m *memNotes) CountActive(_ context.Context, userID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filter(func(n *models.Note) bool { return n.UserID == userID && n.DeletedAt == nil })), nil
}

func (m *memNotes) Update(_ context.Context, note *models.Note, at time.Time) (*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[note.ID]
	if !ok || n.UserID != note.UserID || n.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	n.Title, n.Content, n.UpdatedAt = note.Title, note.Content, at
	cp := *n
	return &cp, nil
}

func (m *memNotes) SoftDelete(_ context.Context, id, userID string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID || n.DeletedAt != nil {
		return common.ErrorNotFound
	}
	by := userID
	n.DeletedAt, n.DeletedBy, n.UpdatedAt = &at, &by, at
	return nil
}

func (m *memNotes) UpdateSummary(_ context.Context, id, userID, summary string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID || n.DeletedAt != nil {
		return common.ErrorNotFound
	}
	n.Summary, n.UpdatedAt = &summary, at
	return nil
}

func (m *memNotes) UpdateTags(_ context.Context, id, userID string, tags []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID || n.DeletedAt != nil {
		return common.ErrorNotFound
	}
	n.Tags, n.UpdatedAt = tags, at
	return nil
}

func (m *memNotes) ListTrashed(_ context.Context, userID string, limit, offset int) ([]*models.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOffset = offset
	all := m.filter(func(n *models.Note) bool { return n.UserID == userID && n.DeletedAt != nil })
	sort.Slice(all, func(i, j int) bool { return all[i].DeletedAt.After(*all[j].DeletedAt) })
	return page(all, limit, offset), nil
}

func (m *memNotes) CountTrashed(_ context.Context, userID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filter(func(n *models.Note) bool { return n.UserID == userID && n.DeletedAt != nil })), nil
}

func (m *memNotes) Restore(_ context.Context, id, userID string, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID || n.DeletedAt == nil {
		return common.ErrNotFoundInTrash
	}
	n.DeletedAt, n.DeletedBy, n.UpdatedAt = nil, nil, at
	return nil
}

func (m *memNotes) Purge(_ context.Context, id, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID || n.DeletedAt == nil {
		return common.ErrNotFoundInTrash
	}
	delete(m.notes, id)
	return nil
}

func (m *memNotes) PurgeAllTrashed(_ context.Context, userID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, note := range m.notes {
		if note.UserID == userID && note.DeletedAt != nil {
			delete(m.notes, id)
			n++
		}
	}
	return n, nil
}

func (m *memNotes) DeleteExpired(_ context.Context, cutoff time.Time) ([]models.PurgedNote, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := make([]models.PurgedNote, 0)
	for id, note := range m.notes {
		if note.DeletedAt != nil && note.DeletedAt.Before(cutoff) {
			purged = append(purged, models.PurgedNote{ID: id, UserID: note.UserID})
			delete(m.notes, id)
		}
	}
	return purged, nil
}

type fakeUsersRepo struct {
	users.Repository

	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	updateErr error
	updated   []byte
	onboarded bool
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-new"
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, _ string, hash []byte) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = hash
	return nil
}

func (f *fakeUsersRepo) SetOnboarded(context.Context, string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.onboarded = true
	return nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error

	created     []string
	deleted     []string
	revokedUser string
	pruned      int64
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, _ time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteForUser(_ context.Context, userID string) (int64, error) {
	f.revokedUser = userID
	return 1, nil
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.pruned, nil
}

type fakeUsageRepo struct {
	recorded []*models.Usage
	err      error
	totals   *models.UsageTotals
}

func (f *fakeUsageRepo) Record(_ context.Context, u *models.Usage) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, u)
	return nil
}

func (f *fakeUsageRepo) Totals(context.Context, string, time.Time) (*models.UsageTotals, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.totals, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	n  *memNotes
	us *fakeUsageRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository                 { return m.n }
func (m *fakeRepoManager) Usage(dbx.DBTX) usage.Repository                 { return m.us }
