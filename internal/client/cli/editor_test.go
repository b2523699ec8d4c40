package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophnotes/internal/client/autosave"
	"github.com/dmitrijs2005/gophnotes/internal/client/drafts"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

func TestNew_CreatesThenUpdates(t *testing.T) {
	app := newTestApp(t, ":t Shopping\nmilk\n:w\neggs\n:w\n:q\n")

	require.NoError(t, app.New(context.Background(), nil))

	assert.Equal(t, []string{"create Shopping", "update n1 Shopping"}, app.api.called())
	assert.Equal(t, "milk\neggs", app.api.notes["n1"].Body())
	assert.Contains(t, app.buf.String(), "Note n1 saved")

	list, err := app.store.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEditor_QuitWithUnsavedChangesKeepsDraft(t *testing.T) {
	app := newTestApp(t, "some text\n:q\n:q!\n")

	require.NoError(t, app.New(context.Background(), nil))

	assert.Contains(t, app.buf.String(), "There are unsaved changes")
	assert.Contains(t, app.buf.String(), "kept as a draft")
	assert.Empty(t, app.api.called())

	d, err := app.store.Peek(context.Background(), drafts.Key("u1", drafts.NewNoteID))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "some text", d.Content)
}

func TestEditor_RemoteFailure(t *testing.T) {
	app := newTestApp(t, "text\n:w\n:s\n:q!\n")
	app.api.saveErr = errors.New("server down")

	require.NoError(t, app.New(context.Background(), nil))

	out := app.buf.String()
	assert.Contains(t, out, "Error: server down")
	assert.Contains(t, out, "save failed: server down")

	d, err := app.store.Peek(context.Background(), drafts.Key("u1", drafts.NewNoteID))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "text", d.Content)
}

func TestEditor_DraftsOfCreatedNoteUseItsID(t *testing.T) {
	app := newTestApp(t, ":t Plan\n:w\nstep one\n:w\n")
	app.api.updateErr = errors.New("server down")

	require.NoError(t, app.New(context.Background(), nil))
	assert.Equal(t, []string{"create Plan", "update n1 Plan", "update n1 Plan"}, app.api.called())

	d, err := app.store.Peek(context.Background(), drafts.Key("u1", "n1"))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "n1", d.NoteID)
	assert.Equal(t, "step one", d.Content)

	d, err = app.store.Peek(context.Background(), drafts.Key("u1", drafts.NewNoteID))
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestEditor_CommandsAndClear(t *testing.T) {
	app := newTestApp(t, "first\n:p\n:clear\nsecond\n:x\n:w\n:q\n")

	require.NoError(t, app.New(context.Background(), nil))

	out := app.buf.String()
	assert.Contains(t, out, "# \nfirst\n")
	assert.Contains(t, out, "Unknown editor command :x")
	assert.Equal(t, "second", app.api.notes["n1"].Body())
}

func TestEditor_FlushesOnEOF(t *testing.T) {
	app := newTestApp(t, "line")

	require.NoError(t, app.New(context.Background(), nil))

	require.Contains(t, app.api.notes, "n1")
	assert.Equal(t, "line", app.api.notes["n1"].Body())
}

func TestEdit_RecoversDraft(t *testing.T) {
	app := newTestApp(t, "y\n:w\n:q\n")
	ctx := context.Background()
	app.api.notes["n1"] = &models.Note{ID: "n1", Title: "Plan", Content: strPtr("v1")}
	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", NoteID: "n1", Title: "Plan", Content: "v2 draft"}))

	require.NoError(t, app.Edit(ctx, []string{"n1"}))

	assert.Contains(t, app.buf.String(), "An unsaved draft from")
	assert.Equal(t, "v2 draft", app.api.notes["n1"].Body())

	d, err := app.store.Peek(ctx, drafts.Key("u1", "n1"))
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestEdit_DiscardsDeclinedDraft(t *testing.T) {
	app := newTestApp(t, "n\n:q\n")
	ctx := context.Background()
	app.api.notes["n1"] = &models.Note{ID: "n1", Title: "Plan", Content: strPtr("v1")}
	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", NoteID: "n1", Title: "Plan", Content: "old"}))

	require.NoError(t, app.Edit(ctx, []string{"n1"}))

	assert.Equal(t, []string{"get n1"}, app.api.called())
	d, err := app.store.Peek(ctx, drafts.Key("u1", "n1"))
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestEdit_IdenticalDraftIsNotOffered(t *testing.T) {
	app := newTestApp(t, ":q\n")
	ctx := context.Background()
	app.api.notes["n1"] = &models.Note{ID: "n1", Title: "Plan", Content: strPtr("v1")}
	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", NoteID: "n1", Title: "Plan", Content: "v1"}))

	require.NoError(t, app.Edit(ctx, []string{"n1"}))
	assert.NotContains(t, app.buf.String(), "An unsaved draft")
}

func TestRecover(t *testing.T) {
	app := newTestApp(t, ":w\n:q\n")
	ctx := context.Background()

	assert.ErrorIs(t, app.Recover(ctx, []string{"new"}), errNoDraft)

	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", Title: "Idea", Content: "x"}))
	require.NoError(t, app.Recover(ctx, []string{"new"}))

	assert.Equal(t, []string{"create Idea"}, app.api.called())
}

func TestDrafts(t *testing.T) {
	app := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, app.Drafts(ctx, nil))
	assert.Contains(t, app.buf.String(), "No drafts")

	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", Title: "Idea"}))
	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u1", NoteID: "n7", Title: "Plan"}))
	require.NoError(t, app.store.Save(ctx, &drafts.Draft{UserID: "u2", NoteID: "n9", Title: "Other"}))

	require.NoError(t, app.Drafts(ctx, nil))
	out := app.buf.String()
	assert.Contains(t, out, "new  ")
	assert.Contains(t, out, "n7  ")
	assert.NotContains(t, out, "Other")
}

func TestStatusLabel(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)

	assert.Equal(t, "not saved", statusLabel(autosave.Status{}))
	assert.Equal(t, "saving...", statusLabel(autosave.Status{State: autosave.StateSaving}))
	assert.Equal(t, "saved 03:04:05", statusLabel(autosave.Status{State: autosave.StateSaved, SavedAt: at}))
	assert.Equal(t, "save failed: x", statusLabel(autosave.Status{State: autosave.StateError, Err: "x"}))
}
