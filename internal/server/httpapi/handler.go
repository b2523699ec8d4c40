package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
)

// Accounts is the account surface of the API.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, id services.Identity) (*models.User, error)
	ChangePassword(ctx context.Context, id services.Identity, oldPassword, newPassword string) error
	CompleteOnboarding(ctx context.Context, id services.Identity) error
	Authenticate(accessToken string) (services.Identity, error)
}

type Notes interface {
	Create(ctx context.Context, id services.Identity, in services.NoteInput) (*models.Note, error)
	Get(ctx context.Context, id services.Identity, noteID string) (*models.Note, error)
	List(ctx context.Context, id services.Identity, page, limit int) (*models.NotePage, error)
	Update(ctx context.Context, id services.Identity, noteID string, in services.NoteInput) (*models.Note, error)
	Delete(ctx context.Context, id services.Identity, noteID string) error
}

type Trash interface {
	ListTrash(ctx context.Context, id services.Identity, page, limit int) (*models.TrashPage, error)
	Restore(ctx context.Context, id services.Identity, noteID string) error
	Purge(ctx context.Context, id services.Identity, noteID string) error
	EmptyTrash(ctx context.Context, id services.Identity) (*models.EmptyTrashResult, error)
}

type Assistant interface {
	Summarize(ctx context.Context, id services.Identity, noteID string) (*models.Note, error)
	GenerateTags(ctx context.Context, id services.Identity, noteID string) (*models.Note, error)
	Usage(ctx context.Context, id services.Identity, since time.Time) (*models.UsageTotals, error)
}

// Sweeper runs the expiry sweep for the maintenance endpoint.
type Sweeper interface {
	Run(ctx context.Context, trigger string) (*models.SweepResult, error)
}

// Handler holds the dependencies of every route.
type Handler struct {
	accounts   Accounts
	notes      Notes
	trash      Trash
	assistant  Assistant
	sweeper    Sweeper
	cronSecret string
	logger     logging.Logger
	now        func() time.Time
}

func NewHandler(accounts Accounts, notes Notes, trash Trash, assistant Assistant, sweeper Sweeper, cronSecret string, logger logging.Logger) *Handler {
	return &Handler{
		accounts:   accounts,
		notes:      notes,
		trash:      trash,
		assistant:  assistant,
		sweeper:    sweeper,
		cronSecret: cronSecret,
		logger:     logger.With("module", "http_api"),
		now:        time.Now,
	}
}
