// Package app wires the server components together and runs them until
// shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/joho/godotenv"

	"synapse/internal/retention"
	"synapse/pkg/auth"
	"synapse/pkg/completion"
	"synapse/pkg/config"
	"synapse/pkg/convo"
	"synapse/pkg/logger"
	"synapse/pkg/session"
	"synapse/pkg/store"
	"synapse/pkg/telemetry"
	"synapse/pkg/userstore"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	users *userstore.Store
	svc   *auth.Service
	orch  *convo.Orchestrator
	sess  *session.Store

	srv *http.Server
}

// New initializes resources that do not require a running context (the
// topic store, the user database, the auth service, the completion
// provider). It does not start the HTTP server; call Run to start it
// and block until shutdown.
func New(ctx context.Context, eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}
	telemetry.SetStoreUsageFunc(func() float64 {
		return float64(store.DiskUsageBytes())
	})

	usersPath := eff.Config.Storage.UsersDBPath
	if usersPath == "" {
		usersPath = "./users.db"
	}
	users, err := userstore.Open(usersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open user db at %s: %w", usersPath, err)
	}

	tokens := auth.NewTokenManager(eff.Config.Security.JWTSecret, eff.Config.Security.RefreshSecret)
	svc := auth.NewService(users, tokens)

	var provider completion.Provider
	if key := eff.Config.AI.APIKey; key != "" {
		g, err := completion.NewGemini(ctx, key, eff.Config.AI.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion provider: %w", err)
		}
		provider = g
	} else {
		logger.Warn("completion_unconfigured", "hint", "set GEMINI_API_KEY or ai.api_key")
		provider = completion.Unconfigured{}
	}
	orch := convo.New(provider)

	var sess *session.Store
	if dir := eff.Config.Storage.SessionDir; dir != "" {
		sess, err = session.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open session dir at %s: %w", dir, err)
		}
	}

	return &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		users:     users,
		svc:       svc,
		orch:      orch,
		sess:      sess,
	}, nil
}

// Service exposes the auth service for session restore in main.
func (a *App) Service() *auth.Service { return a.svc }

// Run starts retention (if enabled), the session refresher and the
// HTTP server, and blocks until ctx is canceled or a fatal server
// error occurs.
func (a *App) Run(ctx context.Context) error {
	stopRetention, err := retention.Start(ctx, a.eff.Config.Retention, a.users)
	if err != nil {
		return err
	}
	defer stopRetention()

	if a.sess != nil {
		if u := a.sess.Restore(ctx, a.svc); u != nil {
			logger.Info("session_user_restored", "user", u.ID, "username", u.Username)
		}
		go a.sess.RunRefresher(ctx, a.svc)
	}

	a.printBanner()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases open stores. Call after Run returns.
func (a *App) Close() {
	a.orch.Wait()
	if a.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.srv.Shutdown(shutdownCtx)
	}
	if err := a.users.Close(); err != nil {
		logger.Error("userdb_close_failed", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
}
