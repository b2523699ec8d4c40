package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophnotes/internal/buildinfo"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
)

// Subcommands take the server's own short flags (-a, -d, ...), parsed by the
// config package, so cobra flag parsing is off for them.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gophnotes-server",
		Short:         "GophNotes note-taking API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:                "serve",
			Short:              "Apply migrations and serve the HTTP API",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
					if err := app.Migrate(ctx); err != nil {
						return err
					}
					return app.Run(ctx)
				})
			},
		},
		&cobra.Command{
			Use:                "migrate",
			Short:              "Apply database migrations and exit",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
					return app.Migrate(ctx)
				})
			},
		},
		&cobra.Command{
			Use:                "sweep",
			Short:              "Permanently delete notes that stayed in the trash past retention",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
					res, err := app.Sweep(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %d note(s)\n", res.DeletedCount)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)

	return root
}

func withApp(ctx context.Context, fn func(context.Context, *server.App) error) error {
	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
