// Package server wires the GophNotes server together: it opens the
// database, builds the services, and runs the HTTP API next to the optional
// in-process expiry sweep until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/httpapi"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/dmitrijs2005/gophnotes/internal/server/sweeper"
)

var (
	openDB      = repomanager.OpenDB
	newS3Client = func(ctx context.Context, cfg *config.Config) (sweeper.ObjectPutter, error) {
		return sweeper.NewS3Client(ctx, cfg)
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	users   *services.UserService
	notes   *services.NoteService
	trash   *services.TrashService
	ai      *services.AIService
	runner  *sweeper.Runner
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	app := &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		manager: m,
		users:   services.NewUserService(db, m, cfg, logger),
		notes:   services.NewNoteService(db, m, logger),
		trash:   services.NewTrashService(db, m, logger),
		ai:      services.NewAIService(db, m, services.NewOpenAIClient(cfg), cfg, logger),
	}

	sinks := []sweeper.AuditSink{sweeper.NewLogSink(logger)}
	if cfg.S3Bucket != "" {
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		sinks = append(sinks, sweeper.NewS3Sink(client, cfg.S3Bucket))
	}
	app.runner = sweeper.NewRunner(app.trash, app.users, logger, sinks...)

	if !app.ai.Enabled() {
		logger.Info(ctx, "OpenAI API key not set, AI assistant disabled")
	}

	return app, nil
}

// Migrate applies pending schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Sweep runs a single expiry sweep from the command line.
func (app *App) Sweep(ctx context.Context) (*models.SweepResult, error) {
	return app.runner.Run(ctx, sweeper.TriggerCLI)
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until ctx is cancelled or a termination signal arrives.
// The sweep scheduler runs alongside when an interval is configured.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	h := httpapi.NewHandler(app.users, app.notes, app.trash, app.ai, app.runner, app.config.CronSecret, app.logger)
	srv := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, h, app.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if app.config.SweepInterval > 0 {
		sch := sweeper.NewScheduler(app.runner, app.config.SweepInterval)
		if err := sch.Start(gctx); err != nil {
			cancelFunc()
			_ = g.Wait()
			return err
		}
		app.logger.Info(ctx, "Sweep scheduler started", "interval", app.config.SweepInterval.String())
		g.Go(func() error {
			<-gctx.Done()
			sch.Stop()
			return nil
		})
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
