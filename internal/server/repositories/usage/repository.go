// Package usage stores per-user AI token accounting.
package usage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type Repository interface {
	// Record stores one AI call and fills its ID and CreatedAt.
	Record(ctx context.Context, u *models.Usage) error
	// Totals sums the user's usage recorded at or after since.
	Totals(ctx context.Context, userID string, since time.Time) (*models.UsageTotals, error)
}
