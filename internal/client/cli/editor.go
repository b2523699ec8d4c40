package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/client/api"
	"github.com/dmitrijs2005/gophnotes/internal/client/autosave"
	"github.com/dmitrijs2005/gophnotes/internal/client/drafts"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

const editorHelp = `Editor: every line you type is appended to the note.
  :t <title>  set the title
  :p          print the note
  :clear      remove the text
  :w          save now
  :s          show the save status
  :q          close (refused while changes are unsaved)
  :q!         close and keep unsaved changes as a local draft`

// editTarget is the note an editor session works on. id is empty until a
// new note is first saved to the server.
type editTarget struct {
	mu   sync.Mutex
	id   string
	sess *autosave.Session
}

func (t *editTarget) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

func (t *editTarget) attach(sess *autosave.Session) {
	t.mu.Lock()
	t.sess = sess
	t.mu.Unlock()
}

// created records the id of a note the server just created and moves the
// session's drafts to it.
func (t *editTarget) created(ctx context.Context, id string) {
	t.mu.Lock()
	t.id = id
	sess := t.sess
	t.mu.Unlock()
	if sess != nil {
		sess.SetNoteID(ctx, id)
	}
}

// remoteSaver saves to the server, creating the note on its first save.
func (a *App) remoteSaver(t *editTarget) autosave.RemoteSaver {
	return func(ctx context.Context, d autosave.Data) error {
		content := d.Content
		in := api.NoteInput{Title: d.Title, Content: &content}
		id := t.get()
		if id == "" {
			n, err := a.api.CreateNote(ctx, in)
			if err != nil {
				return err
			}
			t.created(ctx, n.ID)
			return nil
		}
		_, err := a.api.UpdateNote(ctx, id, in)
		return err
	}
}

func statusLabel(st autosave.Status) string {
	switch st.State {
	case autosave.StateSaving:
		return "saving..."
	case autosave.StateSaved:
		return "saved " + st.SavedAt.Local().Format("15:04:05")
	case autosave.StateError:
		return "save failed: " + st.Err
	}
	return "not saved"
}

// edit runs the editor loop. initial is what the server has; recovered, when
// set, replaces it as the starting text and counts as unsaved.
func (a *App) edit(ctx context.Context, noteID string, initial autosave.Data, recovered *drafts.Draft) error {
	target := &editTarget{id: noteID}

	sess := autosave.NewSession(ctx, a.drafts, initial, autosave.Options{
		UserID:   a.userID(),
		NoteID:   noteID,
		Debounce: a.debounce,
		Interval: a.interval,
		Remote:   a.remoteSaver(target),
		Logger:   a.logger,
		After:    a.after,
	})
	defer sess.Dispose()
	target.attach(sess)

	current := initial
	if recovered != nil {
		current = autosave.Data{Title: recovered.Title, Content: recovered.Content}
		sess.Update(current)
	}

	fmt.Fprintln(a.out, editorHelp)
	for {
		a.printf("[%s] %s> ", statusLabel(sess.Status()), current.Title)
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			// Input closed; flush pending edits.
			_ = sess.ManualSave(ctx)
			return nil
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == ":q!":
			if sess.HasUnsavedChanges() {
				_ = a.drafts.Save(ctx, &drafts.Draft{
					UserID:  a.userID(),
					NoteID:  target.get(),
					Title:   current.Title,
					Content: current.Content,
				})
				a.printf("Unsaved changes kept as a draft\n")
			}
			return nil
		case line == ":q":
			if sess.HasUnsavedChanges() {
				a.printf("There are unsaved changes. Use :w to save or :q! to leave them as a draft.\n")
				continue
			}
			if id := target.get(); id != "" {
				a.printf("Note %s saved\n", id)
			}
			return nil
		case line == ":w":
			if err := sess.ManualSave(ctx); err != nil {
				a.printf("%s\n", describeError(err))
			}
			continue
		case line == ":s":
			a.printf("%s\n", statusLabel(sess.Status()))
			continue
		case line == ":p":
			a.printf("# %s\n%s\n", current.Title, current.Content)
			continue
		case line == ":clear":
			current.Content = ""
		case strings.HasPrefix(line, ":t "):
			current.Title = strings.TrimSpace(strings.TrimPrefix(line, ":t "))
		case strings.HasPrefix(line, ":"):
			a.printf("Unknown editor command %s\n", line)
			continue
		default:
			if current.Content == "" {
				current.Content = line
			} else {
				current.Content += "\n" + line
			}
		}
		sess.Update(current)
	}
}

// New opens the editor on an empty note.
func (a *App) New(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	return a.edit(ctx, "", autosave.Data{}, nil)
}

// Edit opens the editor on a note, offering its local draft when one exists.
func (a *App) Edit(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "edit <id>")
	if err != nil {
		return err
	}

	n, err := a.api.GetNote(ctx, id)
	if err != nil {
		return err
	}
	initial := autosave.Data{Title: n.Title, Content: n.Body()}

	d, err := a.drafts.Peek(ctx, drafts.Key(a.userID(), id))
	if err != nil {
		a.logger.Warn(ctx, "failed to read draft", "error", err)
	}
	var recovered *drafts.Draft
	if d != nil && (d.Title != initial.Title || d.Content != initial.Content) {
		prompt := fmt.Sprintf("An unsaved draft from %s exists. Recover it?", formatTime(d.SavedAt))
		if Confirm(a.reader, prompt, a.out) {
			recovered = d
		} else if err := a.drafts.Clear(ctx, d.Key()); err != nil {
			a.logger.Warn(ctx, "failed to discard draft", "error", err)
		}
	}

	return a.edit(ctx, id, initial, recovered)
}

// Drafts lists the recoverable drafts of the user.
func (a *App) Drafts(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	list, err := a.drafts.List(ctx, a.userID())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No drafts\n")
		return nil
	}
	for _, d := range list {
		id := d.NoteID
		if id == "" {
			id = drafts.NewNoteID
		}
		a.printf("%s  %s  %s\n", id, formatTime(d.SavedAt), d.Title)
	}
	a.printf("Type 'recover <id>' to continue editing a draft.\n")
	return nil
}

var errNoDraft = errors.New("no draft to recover")

// Recover opens the editor on a draft. "new" recovers a note that was never
// saved to the server.
func (a *App) Recover(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "recover <id|new>")
	if err != nil {
		return err
	}

	d, err := a.drafts.Peek(ctx, drafts.Key(a.userID(), id))
	if err != nil {
		return err
	}
	if d == nil {
		return errNoDraft
	}

	if id == drafts.NewNoteID {
		return a.edit(ctx, "", autosave.Data{}, d)
	}

	n, err := a.api.GetNote(ctx, id)
	if err != nil {
		return err
	}
	return a.edit(ctx, id, autosave.Data{Title: n.Title, Content: n.Body()}, d)
}
