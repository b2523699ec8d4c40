package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
	"github.com/dmitrijs2005/gophnotes/internal/client/autosave"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/drafts"
	"github.com/dmitrijs2005/gophnotes/internal/client/localdb"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/services"
	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/filex"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// NotesAPI is the part of the server API the commands use.
type NotesAPI interface {
	Ping(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	CompleteOnboarding(ctx context.Context) error
	ListNotes(ctx context.Context, page, limit int) (*models.NotePage, error)
	CreateNote(ctx context.Context, in api.NoteInput) (*models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, in api.NoteInput) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error
	Summarize(ctx context.Context, id string) (*models.Note, error)
	GenerateTags(ctx context.Context, id string) (*models.Note, error)
	Usage(ctx context.Context) (*models.UsageTotals, error)
	ListTrash(ctx context.Context, page, limit int) (*models.TrashPage, error)
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	EmptyTrash(ctx context.Context) (int64, error)
}

// Session manages the logged-in user.
type Session interface {
	User() *models.User
	Register(ctx context.Context, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.User, error)
}

// DraftStore holds the local drafts of the editor.
type DraftStore interface {
	autosave.DraftStore
	Peek(ctx context.Context, key string) (*drafts.Draft, error)
	List(ctx context.Context, userID string) ([]*drafts.Draft, error)
}

type App struct {
	api      NotesAPI
	session  Session
	drafts   DraftStore
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	debounce time.Duration
	interval time.Duration
	after    autosave.AfterFunc
	closer   io.Closer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database and connects the API client.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if c.DBPath != ":memory:" {
		if _, err := filex.EnsureParentDir(c.DBPath); err != nil {
			return nil, err
		}
	}

	repos, err := localdb.Open(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	client := api.New(c.ServerURL, c.RequestTimeout)

	return &App{
		api:      client,
		session:  services.NewSessionService(client, repos.DB, logger),
		drafts:   drafts.NewStore(repos.Metadata, logger),
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		debounce: c.AutosaveDebounce,
		interval: c.AutosaveInterval,
		closer:   repos,
	}, nil
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.session.User() != nil
}

func (a *App) userID() string {
	if u := a.session.User(); u != nil {
		return u.ID
	}
	return ""
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// checkConnectivity pings the server once and records the result.
func (a *App) checkConnectivity(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkConnectivity(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// resume restores the saved session, if any.
func (a *App) resume(ctx context.Context) {
	u, err := a.session.Restore(ctx)
	switch {
	case err == nil:
		a.printf("Logged in as %s\n", u.Email)
		a.offerDrafts(ctx)
	case errors.Is(err, common.ErrAuthenticationRequired):
		a.printf("Not logged in. Type 'login' or 'register'.\n")
	default:
		a.logger.Warn(ctx, "failed to restore session", "error", err)
		a.printf("Could not restore the session: %v\n", err)
	}
}

// offerDrafts tells the user about recoverable drafts.
func (a *App) offerDrafts(ctx context.Context) {
	list, err := a.drafts.List(ctx, a.userID())
	if err != nil {
		a.logger.Warn(ctx, "failed to list drafts", "error", err)
		return
	}
	if len(list) > 0 {
		a.printf("You have %d unsaved draft(s). Type 'drafts' to see them.\n", len(list))
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.User(); u != nil {
		s = u.Email + " "
	}
	s += string(a.getMode())
	return s
}

// Run restores the session and serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to GophNotes CLI (type 'help' for commands)")
	a.checkConnectivity(ctx)
	a.resume(ctx)

	go a.StartOnlineStatusWatcher(ctx, 10*time.Second)

	runREPL(ctx, a, a.getStatus, a.reader)
}
