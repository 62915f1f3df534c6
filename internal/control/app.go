// Package control assembles and runs the application: stats store, resource
// pool, retry orchestrator, and the HTTP API, with lifecycle management.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nmhoang23/rotauth/internal/api"
	"github.com/nmhoang23/rotauth/internal/core/config"
	"github.com/nmhoang23/rotauth/internal/infra/store"
	"github.com/nmhoang23/rotauth/internal/login"
	"github.com/nmhoang23/rotauth/internal/pool"
)

// App is the assembled application.
type App struct {
	cfg    *config.AppConfig
	pool   *pool.Pool
	orch   *login.Orchestrator
	server *api.Server
	cancel context.CancelFunc
	log    *slog.Logger
}

// NewApp wires all components from configuration. The runner may be injected
// for tests; when nil, the configured HTTP runner endpoint is used.
func NewApp(cfg *config.AppConfig, runner login.Runner) (*App, error) {
	log := slog.Default()

	st, err := newStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	p := pool.New(cfg.Pool.PoolSettings(), st, nil, log)

	if runner == nil {
		if cfg.Runner.Endpoint == "" {
			return nil, fmt.Errorf("runner endpoint is not configured")
		}
		runner = login.NewHTTPRunner(cfg.Runner.Endpoint)
	}

	orch := login.New(p, runner, cfg.Retry.LoginSettings(), log)
	server := api.NewServer(cfg.APISettings(), orch, p, log)

	return &App{
		cfg:    cfg,
		pool:   p,
		orch:   orch,
		server: server,
		log:    log,
	}, nil
}

// newStore selects the stats persistence backend.
func newStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Path), nil
	case "redis":
		st, err := store.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis store: %w", err)
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgresStore(context.Background(), cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres store: %w", err)
		}
		return st, nil
	case "none":
		return store.Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Start initializes the pool, launches the decay worker and the API server.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	a.pool.Init(ctx, a.cfg.Pool.Source)
	go a.pool.StartDecay(ctx)

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Error("API server stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts down gracefully: drains the API server, stops the decay worker,
// and closes the store.
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		a.log.Warn("API server shutdown error", "error", err)
	}

	return a.pool.Close()
}
