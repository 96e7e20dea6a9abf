package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/flowfit/internal/adapters/http/api"
	"github.com/okian/flowfit/internal/adapters/mq/queue"
	"github.com/okian/flowfit/internal/adapters/mq/worker"
	app "github.com/okian/flowfit/internal/app"
	"github.com/okian/flowfit/internal/config"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/pkg/logger"
)

// Server timeouts and the submission event buffer.
const (
	readTimeout        = 10 * time.Second
	writeTimeout       = 30 * time.Second
	idleTimeout        = 60 * time.Second
	readHeaderTimeout  = 5 * time.Second
	shutdownTimeout    = 30 * time.Second
	eventQueueCapacity = 1024
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	events := queue.NewInMemoryQueue(queue.WithCapacity(eventQueueCapacity))
	svc := newService(cfg, log, app.WithEvents(events))
	if err := svc.Start(ctx); err != nil {
		log.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	// The team worker keeps the CRI gauges current; the first event loads
	// them from an already populated store.
	teamWorker := worker.NewTeamWorker(events, teamRefresher(svc), worker.WithLogger(logger.Named("team-worker")))
	go teamWorker.Run(ctx)
	events.Enqueue(ctx, queue.Event{StoredAt: time.Now()})

	srv := newHTTPServer(cfg, svc)

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	_ = events.Close()
	if err := teamWorker.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "team worker shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger, extra ...app.Option) *app.Service {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithCatalogPath(cfg.CatalogPath),
		app.WithStoreDriver(cfg.StoreDriver, cfg.StoreDSN),
		app.WithDedupeSize(cfg.DedupeSize),
	}
	return app.New(append(opts, extra...)...)
}

// newHTTPServer builds the HTTP server around the API routes.
func newHTTPServer(cfg *config.Config, svc *app.Service) *http.Server {
	apiServer := api.NewServer(svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithCORSOrigins(cfg.Origins()),
		api.WithLogger(logger.Named("api")),
	)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// teamRefresher recomputes the team gauges from the stored submissions. An
// empty store is not an error.
func teamRefresher(svc *app.Service) worker.RefresherFunc {
	return func(ctx context.Context) error {
		if _, err := svc.TeamReport(ctx); err != nil && !errors.Is(err, model.ErrEmptySnapshot) {
			return err
		}
		return nil
	}
}
