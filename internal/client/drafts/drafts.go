// Package drafts keeps unsaved note edits in the local key/value store so an
// interrupted session can be recovered. Drafts live under
// "{userID}-temp-note-{noteID}" and expire after MaxAge.
package drafts

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// MaxAge is how long a draft stays recoverable.
const MaxAge = 24 * time.Hour

// NewNoteID stands in for the note id of a note that has not been created yet.
const NewNoteID = "new"

const keyInfix = "-temp-note-"

// Draft is a snapshot of an editor's contents. It is stored as
// {"userId", "noteId", "data": {"title", "content"}, "timestamp"}.
type Draft struct {
	UserID  string
	NoteID  string
	Title   string
	Content string
	SavedAt time.Time
}

type storedDraft struct {
	UserID    string    `json:"userId"`
	NoteID    string    `json:"noteId"`
	Data      draftData `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type draftData struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(storedDraft{
		UserID:    d.UserID,
		NoteID:    d.NoteID,
		Data:      draftData{Title: d.Title, Content: d.Content},
		Timestamp: d.SavedAt,
	})
}

func (d *Draft) UnmarshalJSON(b []byte) error {
	var sd storedDraft
	if err := json.Unmarshal(b, &sd); err != nil {
		return err
	}
	*d = Draft{
		UserID:  sd.UserID,
		NoteID:  sd.NoteID,
		Title:   sd.Data.Title,
		Content: sd.Data.Content,
		SavedAt: sd.Timestamp,
	}
	return nil
}

// Key returns the storage key of the draft for userID and noteID.
func Key(userID, noteID string) string {
	if noteID == "" {
		noteID = NewNoteID
	}
	return userID + keyInfix + noteID
}

func (d *Draft) Key() string { return Key(d.UserID, d.NoteID) }

// KV is the local key/value store drafts are kept in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
}

type Store struct {
	kv     KV
	logger logging.Logger
	now    func() time.Time
}

func NewStore(kv KV, logger logging.Logger) *Store {
	return &Store{kv: kv, logger: logger.With("module", "drafts"), now: time.Now}
}

func (s *Store) stale(d *Draft) bool {
	return s.now().Sub(d.SavedAt) > MaxAge
}

// decode returns nil for a value that does not parse.
func decode(raw []byte) *Draft {
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil
	}
	return &d
}

// Peek returns the draft stored under key, or nil when there is none. A
// stale or unreadable draft is removed and reported as absent.
func (s *Store) Peek(ctx context.Context, key string) (*Draft, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}

	d := decode(raw)
	if d == nil || s.stale(d) {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "failed to drop stale draft", "key", key, "error", err)
		}
		return nil, nil
	}
	return d, nil
}

// Save stores d stamped with the current time.
func (s *Store) Save(ctx context.Context, d *Draft) error {
	d.SavedAt = s.now()
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, d.Key(), raw)
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

// List returns the recoverable drafts of userID, newest first. Stale drafts
// are removed on the way. Keys outside the user's prefix are ignored.
func (s *Store) List(ctx context.Context, userID string) ([]*Draft, error) {
	prefix := userID + keyInfix
	entries, err := s.kv.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make([]*Draft, 0, len(entries))
	for key, raw := range entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		d := decode(raw)
		if d == nil || s.stale(d) || d.UserID != userID || key != d.Key() {
			if err := s.kv.Delete(ctx, key); err != nil {
				s.logger.Warn(ctx, "failed to drop stale draft", "key", key, "error", err)
			}
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}
