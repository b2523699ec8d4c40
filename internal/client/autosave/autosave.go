// Package autosave keeps an in-progress note edit saved without writing on
// every keystroke. A Session saves after a quiet period following the last
// change and on a fixed interval, writes a local draft first and then calls
// an optional remote saver.
package autosave

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/drafts"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// Defaults for Options.
const (
	DefaultDebounce = 2 * time.Second
	DefaultInterval = 3 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateSaving
	StateSaved
	StateError
)

func (s State) String() string {
	switch s {
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the externally visible save state.
type Status struct {
	State   State
	SavedAt time.Time
	Err     string
}

// Data is the editable part of a note.
type Data struct {
	Title   string
	Content string
}

// RemoteSaver persists data on the server.
type RemoteSaver func(ctx context.Context, d Data) error

// DraftStore is where local snapshots go.
type DraftStore interface {
	Save(ctx context.Context, d *drafts.Draft) error
	Clear(ctx context.Context, key string) error
}

// Timer is a stoppable pending callback.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through
// RealAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	UserID   string
	NoteID   string
	Debounce time.Duration
	// Interval of the unconditional save; a negative value disables it.
	Interval time.Duration
	Remote   RemoteSaver
	Logger   logging.Logger
	Now      func() time.Time
	After    AfterFunc
	// OnStatus, when set, is called after every status change.
	OnStatus func(Status)
}

type Session struct {
	ctx      context.Context
	store    DraftStore
	userID   string
	remote   RemoteSaver
	logger   logging.Logger
	now      func() time.Time
	after    AfterFunc
	debounce time.Duration
	interval time.Duration
	onStatus func(Status)

	mu        sync.Mutex
	noteID    string
	key       string
	current   Data
	lastSaved Data
	saving    bool
	disposed  bool
	status    Status
	debounceT Timer
	intervalT Timer
}

// NewSession starts a session editing initial, which counts as already
// saved. Timer-driven saves run with ctx.
func NewSession(ctx context.Context, store DraftStore, initial Data, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.After == nil {
		opts.After = RealAfterFunc
	}

	s := &Session{
		ctx:       ctx,
		store:     store,
		key:       drafts.Key(opts.UserID, opts.NoteID),
		userID:    opts.UserID,
		noteID:    opts.NoteID,
		remote:    opts.Remote,
		logger:    opts.Logger.With("module", "autosave"),
		now:       opts.Now,
		after:     opts.After,
		debounce:  opts.Debounce,
		interval:  opts.Interval,
		onStatus:  opts.OnStatus,
		current:   initial,
		lastSaved: initial,
	}

	if s.interval > 0 {
		s.intervalT = s.after(s.interval, s.tick)
	}
	return s
}

// Update replaces the edited data and restarts the debounce timer.
func (s *Session) Update(d Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.current = d
	if s.debounceT != nil {
		s.debounceT.Stop()
	}
	s.debounceT = s.after(s.debounce, func() { _ = s.save(s.ctx) })
}

func (s *Session) tick() {
	_ = s.save(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.disposed {
		s.intervalT = s.after(s.interval, s.tick)
	}
}

// SetNoteID moves the session to note id, as when a new note gets its server
// id on its first save. Later drafts are stored under the new key and the
// draft under the old key is cleared.
func (s *Session) SetNoteID(ctx context.Context, id string) {
	s.mu.Lock()
	if id == s.noteID {
		s.mu.Unlock()
		return
	}
	old := s.key
	s.noteID = id
	s.key = drafts.Key(s.userID, id)
	s.mu.Unlock()

	if err := s.store.Clear(ctx, old); err != nil {
		s.logger.Warn(ctx, "LocalStorageFailure: draft not cleared", "key", old, "error", err)
	}
}

// ManualSave saves now, bypassing the timers. It returns the remote error,
// if any.
func (s *Session) ManualSave(ctx context.Context) error {
	return s.save(ctx)
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ResetSaveStatus puts the status back to idle.
func (s *Session) ResetSaveStatus() {
	s.setStatus(Status{State: StateIdle})
}

// HasUnsavedChanges reports whether the data differs from the last
// successful save.
func (s *Session) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !reflect.DeepEqual(s.current, s.lastSaved)
}

// Dispose stops both timers. A save already in flight finishes but its
// outcome is dropped.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	if s.debounceT != nil {
		s.debounceT.Stop()
	}
	if s.intervalT != nil {
		s.intervalT.Stop()
	}
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

// save writes the local draft and then the remote copy. It does nothing
// while another save is running or when the data has not changed since the
// last successful save.
func (s *Session) save(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed || s.saving || reflect.DeepEqual(s.current, s.lastSaved) {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	snapshot := s.current
	noteID, key := s.noteID, s.key
	s.status = Status{State: StateSaving}
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(Status{State: StateSaving})
	}

	draft := &drafts.Draft{UserID: s.userID, NoteID: noteID, Title: snapshot.Title, Content: snapshot.Content}
	if err := s.store.Save(ctx, draft); err != nil {
		s.logger.Warn(ctx, "LocalStorageFailure: draft not written", "key", key, "error", err)
	}

	var remoteErr error
	if s.remote != nil {
		remoteErr = s.remote(ctx, snapshot)
	}

	s.mu.Lock()
	s.saving = false
	if s.disposed {
		s.mu.Unlock()
		return remoteErr
	}
	if remoteErr != nil {
		st := Status{State: StateError, Err: remoteErr.Error()}
		s.status = st
		s.mu.Unlock()
		s.logger.Warn(ctx, "remote save failed", "key", key, "error", remoteErr)
		if cb != nil {
			cb(st)
		}
		return remoteErr
	}

	s.lastSaved = snapshot
	st := Status{State: StateSaved, SavedAt: s.now()}
	s.status = st
	clearDraft := s.remote != nil && reflect.DeepEqual(s.current, snapshot)
	key = s.key
	s.mu.Unlock()

	if clearDraft {
		if err := s.store.Clear(ctx, key); err != nil {
			s.logger.Warn(ctx, "LocalStorageFailure: draft not cleared", "key", key, "error", err)
		}
	}
	if cb != nil {
		cb(st)
	}
	return nil
}
