// Package app wires configuration into repositories and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/go-devlinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-devlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-devlinks/pkg/adapters/scratch"
	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/core/draft"
	"github.com/wadjakorntonsri/go-devlinks/pkg/core/services"
	"github.com/wadjakorntonsri/go-devlinks/pkg/ports"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Repo     *sqlite.SQLiteRepository
	Sync     *services.SyncService
	Profiles *services.ProfileService
	Editor   *services.EditorService
	Limiter  *handler.RateLimiter

	closers []func() error
}

// New opens the database and draft storage named by cfg. Drafts go to Redis
// when REDIS_URL is set and stay in process memory otherwise.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a := &App{Config: cfg, Logger: logger, Repo: repo}
	a.closers = append(a.closers, repo.Close)

	var store ports.ScratchStorage = scratch.NewMemoryStorage()
	if cfg.RedisURL != "" {
		rs, err := scratch.NewRedisStorage(ctx, cfg.RedisURL, cfg.DraftTTL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		store = rs
		logger.Info("drafts stored in redis")
	}

	a.Sync = services.NewSyncService(repo, logger)
	a.Profiles = services.NewProfileService(repo, a.Sync, logger)
	a.Editor = services.NewEditorService(draft.NewManager(store), a.Sync, logger,
		services.WithProtectUnsaved(cfg.ProtectUnsavedDrafts),
		services.WithIdleEviction(cfg.SessionIdleTimeout, cfg.DraftTTL))
	a.Limiter = handler.NewRateLimiter(cfg.PublicRateLimitRPS, cfg.PublicRateLimitBurst)
	return a, nil
}

func (a *App) Handler() http.Handler {
	return handler.NewRouter(a.Config, a.Logger, a.Profiles, a.Editor, a.Limiter)
}

// PollRemote refreshes open editor sessions with link changes committed by
// other processes, every cfg.RemotePollInterval until ctx is done. A
// non-positive interval disables polling.
func (a *App) PollRemote(ctx context.Context) {
	interval := a.Config.RemotePollInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Repo.Poll(ctx); err != nil && ctx.Err() == nil {
				a.Logger.Warn("failed polling remote links", "error", err)
			}
		}
	}
}

// Close releases storage in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
