package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/common"
)

const pageSize = 20

// pageArg parses the optional page argument.
func pageArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	page, err := strconv.Atoi(args[0])
	if err != nil || page < 1 {
		return 0, usageError(usage)
	}
	return page, nil
}

// idArg returns the single id argument.
func idArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", usageError(usage)
	}
	return args[0], nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func (a *App) printNoteLine(n *models.Note) {
	line := n.ID + "  " + formatTime(n.UpdatedAt) + "  " + n.Title
	if len(n.Tags) > 0 {
		line += "  [" + strings.Join(n.Tags, ", ") + "]"
	}
	a.printf("%s\n", line)
}

// List prints a page of active notes, newest first.
func (a *App) List(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	page, err := pageArg(args, "list [page]")
	if err != nil {
		return err
	}

	p, err := a.api.ListNotes(ctx, page, pageSize)
	if err != nil {
		return err
	}
	if p.TotalCount == 0 {
		a.printf("No notes yet. Type 'new' to write one.\n")
		return nil
	}
	for _, n := range p.Notes {
		a.printNoteLine(n)
	}
	a.printf("Page %d of %d (%d notes)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	return nil
}

func (a *App) printNote(n *models.Note) {
	a.printf("# %s\n", n.Title)
	a.printf("id: %s, updated %s\n", n.ID, formatTime(n.UpdatedAt))
	if len(n.Tags) > 0 {
		a.printf("tags: %s\n", strings.Join(n.Tags, ", "))
	}
	if n.Summary != nil && *n.Summary != "" {
		a.printf("summary: %s\n", *n.Summary)
	}
	a.printf("\n%s\n", n.Body())
}

func (a *App) Show(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "show <id>")
	if err != nil {
		return err
	}

	n, err := a.api.GetNote(ctx, id)
	if err != nil {
		return err
	}
	a.printNote(n)
	return nil
}

// Delete moves a note to the trash.
func (a *App) Delete(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "delete <id>")
	if err != nil {
		return err
	}

	if err := a.api.DeleteNote(ctx, id); err != nil {
		return err
	}
	a.printf("Note moved to trash. It will be deleted permanently in 30 days.\n")
	return nil
}
