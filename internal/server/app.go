// Package server wires the visa API together: storage, token
// verification, services and the HTTP router, and runs it until the
// process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/config"
	"github.com/dmitrijs2005/borderease/internal/server/httpapi"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/borderease/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	limiter *httpapi.RateLimiter
	handler http.Handler
}

// seams for tests
var (
	openPostgres        = repomanager.OpenPostgres
	newFirebaseVerifier = func(ctx context.Context, projectID, credentialsFile string) (auth.Verifier, error) {
		return auth.NewFirebaseVerifier(ctx, projectID, credentialsFile)
	}
)

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	rm, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	verifier, err := app.initVerifier(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpapi.NewCollector(reg)

	app.limiter = httpapi.NewRateLimiter(httpapi.RateLimiterConfig{
		Rate:  rate.Limit(c.RateLimitRPS),
		Burst: c.RateLimitBurst,
	}, logger, metrics)

	app.handler = httpapi.NewRouter(httpapi.RouterDeps{
		Visas:        services.NewVisaService(app.db, rm),
		Applications: services.NewApplicationService(app.db, rm),
		Users:        services.NewUserService(app.db, rm),
		Verifier:     verifier,
		RateLimiter:  app.limiter,
		Metrics:      metrics,
		Gatherer:     reg,
		Logger:       logger,
	})

	return app, nil
}

// initStorage opens and migrates PostgreSQL when a DSN is configured and
// falls back to the in-memory store otherwise.
func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, using in-memory store")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	app.db = db
	return rm, nil
}

func (app *App) initVerifier(ctx context.Context) (auth.Verifier, error) {
	switch app.config.AuthMode {
	case config.AuthFirebase:
		v, err := newFirebaseVerifier(ctx, app.config.FirebaseProjectID, app.config.FirebaseCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firebase init error: %w", err)
		}
		return v, nil
	default:
		return auth.NewLocalVerifier([]byte(app.config.LocalSecret)), nil
	}
}

// Handler returns the API router.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Run listens on the configured address and serves until ctx is done or
// the process receives SIGINT/SIGTERM/SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	ln, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return err
	}
	return app.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then drains in-flight requests
// for at most ShutdownTimeout.
func (app *App) Serve(ctx context.Context, ln net.Listener) error {
	defer app.Close()

	srv := &http.Server{
		Handler:      app.handler,
		ReadTimeout:  app.config.ReadTimeout,
		WriteTimeout: app.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the database and the rate limiter. Safe to call twice.
func (app *App) Close() {
	if app.limiter != nil {
		app.limiter.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(context.Background(), "closing database", "error", err)
		}
		app.db = nil
	}
}
