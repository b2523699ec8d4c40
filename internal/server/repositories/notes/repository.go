// Package notes declares the server-side repository contract for notes and
// provides its PostgreSQL implementation.
package notes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Repository covers both halves of a note's life: the active list and the
// trash. Every method except DeleteExpired is scoped by user ID.
type Repository interface {
	// Create inserts an active note and fills its timestamps.
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	// GetActive returns an active note or common.ErrorNotFound.
	GetActive(ctx context.Context, id, userID string) (*models.Note, error)
	ListActive(ctx context.Context, userID string, limit, offset int) ([]*models.Note, error)
	CountActive(ctx context.Context, userID string) (int, error)
	// Update rewrites title and content of an active note.
	Update(ctx context.Context, note *models.Note, at time.Time) (*models.Note, error)
	// SoftDelete moves an active note to the trash.
	SoftDelete(ctx context.Context, id, userID string, at time.Time) error
	UpdateSummary(ctx context.Context, id, userID, summary string, at time.Time) error
	UpdateTags(ctx context.Context, id, userID string, tags []string, at time.Time) error

	ListTrashed(ctx context.Context, userID string, limit, offset int) ([]*models.Note, error)
	CountTrashed(ctx context.Context, userID string) (int, error)
	// Restore and Purge return common.ErrNotFoundInTrash when no trashed
	// note of the user has the given ID.
	Restore(ctx context.Context, id, userID string, at time.Time) error
	Purge(ctx context.Context, id, userID string) error
	// PurgeAllTrashed hard-deletes the user's whole trash.
	PurgeAllTrashed(ctx context.Context, userID string) (int64, error)
	// DeleteExpired hard-deletes every trashed note deleted before cutoff,
	// regardless of owner.
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]models.PurgedNote, error)
}
