package cli

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// retention is how long the server keeps trashed notes.
const retention = 30 * 24 * time.Hour

// Trash lists trashed notes with the days left until permanent deletion.
func (a *App) Trash(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	page, err := pageArg(args, "trash [page]")
	if err != nil {
		return err
	}

	p, err := a.api.ListTrash(ctx, page, pageSize)
	if err != nil {
		return err
	}
	if p.TotalCount == 0 {
		a.printf("Trash is empty\n")
		return nil
	}

	now := time.Now()
	for _, n := range p.Notes {
		left := "?"
		if n.DeletedAt != nil {
			left = daysLabel(daysLeft(*n.DeletedAt, now))
		}
		a.printf("%s  %s  (%s left)\n", n.ID, n.Title, left)
	}
	a.printf("Page %d of %d (%d notes)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	return nil
}

// daysLeft is the number of started days until a note trashed at deletedAt
// is purged.
func daysLeft(deletedAt, now time.Time) int {
	days := int(math.Ceil(deletedAt.Add(retention).Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func daysLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return strconv.Itoa(days) + " days"
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "restore <id>")
	if err != nil {
		return err
	}
	if err := a.api.Restore(ctx, id); err != nil {
		return err
	}
	a.printf("Note restored\n")
	return nil
}

// Purge deletes one trashed note permanently after confirmation.
func (a *App) Purge(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "purge <id>")
	if err != nil {
		return err
	}
	if !Confirm(a.reader, "Delete the note permanently? This cannot be undone.", a.out) {
		a.printf("Cancelled\n")
		return nil
	}
	if err := a.api.Purge(ctx, id); err != nil {
		return err
	}
	a.printf("Note deleted permanently\n")
	return nil
}

// EmptyTrash purges every trashed note after confirmation.
func (a *App) EmptyTrash(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	if !Confirm(a.reader, "Delete all notes in the trash permanently?", a.out) {
		a.printf("Cancelled\n")
		return nil
	}
	n, err := a.api.EmptyTrash(ctx)
	if err != nil {
		return err
	}
	a.printf("Deleted %d note(s)\n", n)
	return nil
}
