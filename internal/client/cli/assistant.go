package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// Summary asks the assistant to summarize a note.
func (a *App) Summary(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "summary <id>")
	if err != nil {
		return err
	}
	n, err := a.api.Summarize(ctx, id)
	if err != nil {
		return err
	}
	if n.Summary != nil {
		a.printf("Summary: %s\n", *n.Summary)
	}
	return nil
}

// Tags asks the assistant to tag a note.
func (a *App) Tags(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	id, err := idArg(args, "tags <id>")
	if err != nil {
		return err
	}
	n, err := a.api.GenerateTags(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Tags: %s\n", strings.Join(n.Tags, ", "))
	return nil
}

// Usage prints the assistant token usage of the last 30 days.
func (a *App) Usage(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	u, err := a.api.Usage(ctx)
	if err != nil {
		return err
	}
	a.printf("Requests: %d\nPrompt tokens: %d\nCompletion tokens: %d\nTotal tokens: %d\n",
		u.Requests, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	return nil
}
