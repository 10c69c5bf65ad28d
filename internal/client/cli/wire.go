package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/borderease/internal/client/client"
	"github.com/dmitrijs2005/borderease/internal/client/config"
	"github.com/dmitrijs2005/borderease/internal/client/identity"
	"github.com/dmitrijs2005/borderease/internal/client/identity/firebase"
	"github.com/dmitrijs2005/borderease/internal/client/identity/local"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
	"github.com/dmitrijs2005/borderease/internal/client/services"
	"github.com/dmitrijs2005/borderease/internal/client/session"
	"github.com/dmitrijs2005/borderease/internal/filex"
	"github.com/dmitrijs2005/borderease/internal/logging"

	_ "modernc.org/sqlite"
)

// startable providers resolve their initial state in the background.
type startable interface {
	identity.Provider
	Start(ctx context.Context)
}

// Bootstrap builds a ready App from configuration. The returned func
// releases everything Bootstrap opened.
func Bootstrap(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, func(), error) {
	policy, err := pages.ParseFallbackPolicy(cfg.FallbackPolicy)
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := filex.DataFile(cfg.DataDir, "borderease.db")
	if err != nil {
		return nil, nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	repos := client.NewRepositories(db)

	api, err := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	provider, err := newProvider(ctx, cfg, repos, out, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	store := session.NewStore(provider, api, logger.With("component", "session"))
	api.SetTokenSource(store)
	store.Init(ctx)
	provider.Start(ctx)

	readCache := pages.NewReadCache(repos.Cache)
	app := NewApp(Components{
		Sessions: store,
		API:      api,
		Deps: pages.Deps{
			API:            api,
			Session:        store,
			Cache:          readCache,
			Policy:         policy,
			RequestTimeout: cfg.RequestTimeout,
			LatestTimeout:  cfg.LatestTimeout,
			Logger:         logger.With("component", "pages"),
		},
		Theme:   services.NewThemeService(repos.Preferences),
		Offline: services.NewOfflineService(api, readCache, cfg.CacheMaxAge, logger),
		Logger:  logger,
		In:      in,
		Out:     out,
	})
	app.CheckInterval = cfg.OnlineCheckInterval

	cleanup := func() {
		store.Dispose()
		closeDB(db, logger)
	}
	return app, cleanup, nil
}

func newProvider(ctx context.Context, cfg *config.Config, repos *client.Repositories, out io.Writer, logger logging.Logger) (startable, error) {
	switch cfg.IdentityMode {
	case config.IdentityFirebase:
		return firebase.New(ctx, firebase.Config{
			APIKey: cfg.FirebaseAPIKey,
			Opener: func(_ context.Context, url string) error {
				_, err := fmt.Fprintf(out, "Open this address in your browser to continue:\n  %s\n", url)
				return err
			},
		}, repos.Preferences, logger.With("component", "identity"))
	case config.IdentityLocal:
		return local.New(local.Config{
			Secret:         []byte(cfg.LocalSecret),
			FederatedEmail: cfg.LocalFederatedEmail,
		}), nil
	}
	return nil, fmt.Errorf("unknown identity mode %q", cfg.IdentityMode)
}

func closeDB(db *sql.DB, logger logging.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn(context.Background(), "close local db", "error", err)
	}
}
