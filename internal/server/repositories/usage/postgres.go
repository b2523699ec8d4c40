package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, u *models.Usage) error {
	query := `
		INSERT INTO ai_usage (user_id, note_id, operation, model, prompt_tokens, completion_tokens, total_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		u.UserID, u.NoteID, u.Operation, u.Model, u.PromptTokens, u.CompletionTokens, u.TotalTokens).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Totals(ctx context.Context, userID string, since time.Time) (*models.UsageTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COALESCE(SUM(total_tokens), 0)
		FROM ai_usage
		WHERE user_id = $1 AND created_at >= $2
	`
	t := &models.UsageTotals{}
	err := r.db.QueryRowContext(ctx, query, userID, since).
		Scan(&t.Requests, &t.PromptTokens, &t.CompletionTokens, &t.TotalTokens)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
