package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

const noteColumns = `id, user_id, title, content, summary, tags, created_at, updated_at, deleted_at, deleted_by`

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (*models.Note, error) {
	n := &models.Note{}
	var tags []byte
	if err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Summary, &tags,
		&n.CreatedAt, &n.UpdatedAt, &n.DeletedAt, &n.DeletedBy); err != nil {
		return nil, err
	}
	n.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &n.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return n, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (r *PostgresRepository) queryNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// expectOne turns a zero rows-affected result into notFound.
func expectOne(n int64, err error, notFound error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO notes (id, user_id, title, content, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, note.ID, note.UserID, note.Title, note.Content, tags).
		Scan(&note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

func (r *PostgresRepository) GetActive(ctx context.Context, id, userID string) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID string, limit, offset int) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`
	return r.queryNotes(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) CountActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1 AND deleted_at IS NULL`, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, note *models.Note, at time.Time) (*models.Note, error) {
	query := `
		UPDATE notes SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING ` + noteColumns
	n, err := scanNote(r.db.QueryRowContext(ctx, query, note.ID, note.UserID, note.Title, note.Content, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE notes SET deleted_at = $3, deleted_by = $2, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	n, err := dbx.ExecAffected(ctx, r.db, query, id, userID, at)
	return expectOne(n, err, common.ErrorNotFound)
}

func (r *PostgresRepository) UpdateSummary(ctx context.Context, id, userID, summary string, at time.Time) error {
	query := `
		UPDATE notes SET summary = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	n, err := dbx.ExecAffected(ctx, r.db, query, id, userID, summary, at)
	return expectOne(n, err, common.ErrorNotFound)
}

func (r *PostgresRepository) UpdateTags(ctx context.Context, id, userID string, tags []string, at time.Time) error {
	encoded, err := encodeTags(tags)
	if err != nil {
		return err
	}
	query := `
		UPDATE notes SET tags = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	n, err := dbx.ExecAffected(ctx, r.db, query, id, userID, encoded, at)
	return expectOne(n, err, common.ErrorNotFound)
}

func (r *PostgresRepository) ListTrashed(ctx context.Context, userID string, limit, offset int) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes
		WHERE user_id = $1 AND deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
		LIMIT $2 OFFSET $3`
	return r.queryNotes(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) CountTrashed(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1 AND deleted_at IS NOT NULL`, userID)
}

func (r *PostgresRepository) Restore(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE notes SET deleted_at = NULL, deleted_by = NULL, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NOT NULL`
	n, err := dbx.ExecAffected(ctx, r.db, query, id, userID, at)
	return expectOne(n, err, common.ErrNotFoundInTrash)
}

func (r *PostgresRepository) Purge(ctx context.Context, id, userID string) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2 AND deleted_at IS NOT NULL`
	n, err := dbx.ExecAffected(ctx, r.db, query, id, userID)
	return expectOne(n, err, common.ErrNotFoundInTrash)
}

func (r *PostgresRepository) PurgeAllTrashed(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM notes WHERE user_id = $1 AND deleted_at IS NOT NULL`
	return dbx.ExecAffected(ctx, r.db, query, userID)
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) ([]models.PurgedNote, error) {
	query := `
		DELETE FROM notes
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
		RETURNING id, user_id`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	purged := make([]models.PurgedNote, 0)
	for rows.Next() {
		var p models.PurgedNote
		if err := rows.Scan(&p.ID, &p.UserID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		purged = append(purged, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return purged, nil
}
