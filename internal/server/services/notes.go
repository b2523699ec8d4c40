package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
)

// MaxTitleLength bounds note titles, in runes.
const MaxTitleLength = 200

// NoteInput is the editable part of a note. The title bound repeats
// MaxTitleLength.
type NoteInput struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

func (in *NoteInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if err := common.Validate.Struct(in); err != nil {
		return common.Invalid(err)
	}
	return nil
}

// NoteService handles active notes of the caller. Deleting a note moves it to
// the trash, which TrashService owns from then on.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "notes"),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

func (s *NoteService) Create(ctx context.Context, id Identity, in NoteInput) (_ *models.Note, err error) {
	ctx, span := startSpan(ctx, "NoteService.Create", id)
	defer func() { endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:      s.newID(),
		UserID:  id.UserID,
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
	}
	created, err := s.repomanager.Notes(s.db).Create(ctx, note)
	if err != nil {
		return nil, common.Persistence("create note", err)
	}
	s.logger.Debug(ctx, "note created", "note_id", created.ID, "user_id", id.UserID)
	return created, nil
}

// Get returns an active note of the caller. Trashed notes are not found here.
func (s *NoteService) Get(ctx context.Context, id Identity, noteID string) (_ *models.Note, err error) {
	ctx, span := startSpan(ctx, "NoteService.Get", id, attribute.String("note.id", noteID))
	defer func() { endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}
	if !validID(noteID) {
		return nil, common.ErrorNotFound
	}
	n, err := s.repomanager.Notes(s.db).GetActive(ctx, noteID, id.UserID)
	if err != nil {
		return nil, common.Persistence("get note", err)
	}
	return n, nil
}

// List returns one page of the caller's active notes, most recently
// updated first.
func (s *NoteService) List(ctx context.Context, id Identity, page, limit int) (_ *models.NotePage, err error) {
	ctx, span := startSpan(ctx, "NoteService.List", id)
	defer func() { endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}
	page, limit = clampPage(page, limit)

	repo := s.repomanager.Notes(s.db)
	total, err := repo.CountActive(ctx, id.UserID)
	if err != nil {
		return nil, common.Persistence("count notes", err)
	}
	notes, err := repo.ListActive(ctx, id.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, common.Persistence("list notes", err)
	}
	return &models.NotePage{
		Notes:       notes,
		TotalCount:  total,
		TotalPages:  totalPages(total, limit),
		CurrentPage: page,
	}, nil
}

// Update rewrites title and content of an active note.
func (s *NoteService) Update(ctx context.Context, id Identity, noteID string, in NoteInput) (_ *models.Note, err error) {
	ctx, span := startSpan(ctx, "NoteService.Update", id, attribute.String("note.id", noteID))
	defer func() { endSpan(span, err) }()

	if err := id.require(); err != nil {
		return nil, err
	}
	if !validID(noteID) {
		return nil, common.ErrorNotFound
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	note := &models.Note{ID: noteID, UserID: id.UserID, Title: in.Title, Content: in.Content}
	updated, err := s.repomanager.Notes(s.db).Update(ctx, note, s.now())
	if err != nil {
		return nil, common.Persistence("update note", err)
	}
	if in.Tags != nil {
		if err := s.repomanager.Notes(s.db).UpdateTags(ctx, noteID, id.UserID, in.Tags, updated.UpdatedAt); err != nil {
			return nil, common.Persistence("update tags", err)
		}
		updated.Tags = in.Tags
	}
	return updated, nil
}

// Delete soft-deletes an active note, recording the caller as the deleter.
func (s *NoteService) Delete(ctx context.Context, id Identity, noteID string) (err error) {
	ctx, span := startSpan(ctx, "NoteService.Delete", id, attribute.String("note.id", noteID))
	defer func() { endSpan(span, err) }()

	if err := id.require(); err != nil {
		return err
	}
	if !validID(noteID) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Notes(s.db).SoftDelete(ctx, noteID, id.UserID, s.now()); err != nil {
		return common.Persistence("delete note", err)
	}
	s.logger.Info(ctx, "note moved to trash", "note_id", noteID, "user_id", id.UserID)
	return nil
}
