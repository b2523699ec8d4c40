package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// TrashRetention is how long a soft-deleted note stays restorable before the
// expiry sweep removes it.
const TrashRetention = 30 * 24 * time.Hour

// TrashService manages soft-deleted notes: listing, restore, purge, emptying
// the trash and the retention sweep. Every operation except SweepExpired is
// scoped to the caller's notes.
type TrashService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewTrashService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TrashService {
	return &TrashService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "trash"),
		now:         time.Now,
	}
}

func observe(op string, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, common.ErrAuthenticationRequired):
		outcome = metrics.OutcomeDenied
	case errors.Is(err, common.ErrNotFoundInTrash):
		outcome = metrics.OutcomeNotFound
	default:
		outcome = metrics.OutcomeError
	}
	metrics.TrashOperations.WithLabelValues(op, outcome).Inc()
}

// ListTrash returns one page of the caller's trashed notes, most recently
// deleted first.
func (s *TrashService) ListTrash(ctx context.Context, id Identity, page, limit int) (_ *models.TrashPage, err error) {
	ctx, span := startSpan(ctx, "TrashService.ListTrash", id)
	defer func() { observe("list", err); endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}
	page, limit = clampPage(page, limit)

	repo := s.repomanager.Notes(s.db)
	total, err := repo.CountTrashed(ctx, id.UserID)
	if err != nil {
		return nil, common.Persistence("count trash", err)
	}
	notes, err := repo.ListTrashed(ctx, id.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, common.Persistence("list trash", err)
	}

	pages := totalPages(total, limit)
	return &models.TrashPage{
		Notes:           notes,
		TotalCount:      total,
		TotalPages:      pages,
		CurrentPage:     page,
		HasNextPage:     page < pages,
		HasPreviousPage: page > 1,
	}, nil
}

// Restore moves a trashed note of the caller back to the active list.
func (s *TrashService) Restore(ctx context.Context, id Identity, noteID string) (err error) {
	ctx, span := startSpan(ctx, "TrashService.Restore", id, attribute.String("note.id", noteID))
	defer func() { observe("restore", err); endSpan(span, err) }()

	if err := id.require(); err != nil {
		return err
	}
	if !validID(noteID) {
		return common.ErrNotFoundInTrash
	}

	if err := s.repomanager.Notes(s.db).Restore(ctx, noteID, id.UserID, s.now()); err != nil {
		return common.Persistence("restore note", err)
	}
	s.logger.Info(ctx, "note restored", "note_id", noteID, "user_id", id.UserID)
	return nil
}

// Purge permanently deletes a trashed note of the caller.
func (s *TrashService) Purge(ctx context.Context, id Identity, noteID string) (err error) {
	ctx, span := startSpan(ctx, "TrashService.Purge", id, attribute.String("note.id", noteID))
	defer func() { observe("purge", err); endSpan(span, err) }()

	if err := id.require(); err != nil {
		return err
	}
	if !validID(noteID) {
		return common.ErrNotFoundInTrash
	}

	if err := s.repomanager.Notes(s.db).Purge(ctx, noteID, id.UserID); err != nil {
		return common.Persistence("purge note", err)
	}
	metrics.NotesPurged.WithLabelValues("purge").Inc()
	s.logger.Info(ctx, "note purged", "note_id", noteID, "user_id", id.UserID)
	return nil
}

// EmptyTrash permanently deletes every trashed note of the caller in one
// statement inside a transaction.
func (s *TrashService) EmptyTrash(ctx context.Context, id Identity) (_ *models.EmptyTrashResult, err error) {
	ctx, span := startSpan(ctx, "TrashService.EmptyTrash", id)
	defer func() { observe("empty", err); endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}

	var deleted int64
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Notes(tx).PurgeAllTrashed(ctx, id.UserID)
		deleted = n
		return err
	}); err != nil {
		return nil, common.Persistence("empty trash", err)
	}

	metrics.NotesPurged.WithLabelValues("empty_trash").Add(float64(deleted))
	s.logger.Info(ctx, "trash emptied", "user_id", id.UserID, "deleted", deleted)
	return &models.EmptyTrashResult{DeletedCount: deleted}, nil
}

// SweepExpired permanently deletes every note, of any user, that has been in
// the trash for longer than TrashRetention as of now. It is meant for
// maintenance callers only. A sweep that finds nothing is a success.
func (s *TrashService) SweepExpired(ctx context.Context, now time.Time) (_ *models.SweepResult, err error) {
	cutoff := now.Add(-TrashRetention)
	ctx, span := tracer.Start(ctx, "TrashService.SweepExpired")
	span.SetAttributes(attribute.String("sweep.cutoff", cutoff.UTC().Format(time.RFC3339)))
	defer func() { observe("sweep", err); endSpan(span, err) }()

	started := time.Now()
	purged, err := s.repomanager.Notes(s.db).DeleteExpired(ctx, cutoff)
	metrics.SweepDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, common.Persistence("sweep expired notes", err)
	}

	n := int64(len(purged))
	span.SetAttributes(attribute.Int64("sweep.deleted", n))
	metrics.NotesPurged.WithLabelValues("sweep").Add(float64(n))
	return &models.SweepResult{DeletedCount: n, DeletedNotes: purged}, nil
}
