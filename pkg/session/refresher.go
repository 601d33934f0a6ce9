package session

import (
	"context"
	"time"

	"synapse/pkg/auth"
	"synapse/pkg/logger"
)

// RefreshInterval is the cadence of the background token check.
const RefreshInterval = 5 * time.Minute

// rotate exchanges the refresh token for a new pair and persists it.
func (s *Store) rotate(ctx context.Context, svc *auth.Service) bool {
	resp := svc.Refresh(ctx, s.RefreshToken())
	if !resp.Success {
		logger.Warn("session_refresh_failed", "message", resp.Message)
		return false
	}
	if err := s.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		logger.Error("session_persist_failed", "error", err)
		return false
	}
	if resp.User != nil {
		_ = s.SetCurrentUser(resp.User)
	}
	return true
}

// RunRefresher checks the access token every RefreshInterval and rotates
// it through the auth service when expired. Blocks until ctx is done;
// run it in its own goroutine.
func (s *Store) RunRefresher(ctx context.Context, svc *auth.Service) {
	t := time.NewTicker(RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.HasTokens() {
				continue
			}
			if !auth.IsExpired(s.AccessToken()) {
				continue
			}
			if s.rotate(ctx, svc) {
				logger.Info("session_token_rotated")
			} else {
				s.Clear()
			}
		}
	}
}
