// Package session persists the signed-in identity (token pair and
// current user) across restarts and keeps the access token fresh with a
// background refresher.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"synapse/pkg/auth"
	"synapse/pkg/logger"
	"synapse/pkg/models"
)

// Fixed storage keys, one file per key under the session directory.
const (
	KeyAccessToken  = "synapse_access_token"
	KeyRefreshToken = "synapse_refresh_token"
	KeyCurrentUser  = "synapse_current_user"
)

// Store is a small file-backed key-value store for session state.
type Store struct {
	dir string
}

// NewStore opens (or creates) the session directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("empty session dir")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string { return filepath.Join(s.dir, key) }

func (s *Store) get(key string) string {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *Store) set(key, value string) error {
	return os.WriteFile(s.path(key), []byte(value), 0o600)
}

func (s *Store) remove(key string) {
	_ = os.Remove(s.path(key))
}

// SetTokens stores the token pair.
func (s *Store) SetTokens(accessToken, refreshToken string) error {
	if err := s.set(KeyAccessToken, accessToken); err != nil {
		return err
	}
	return s.set(KeyRefreshToken, refreshToken)
}

// AccessToken returns the stored access token, or "".
func (s *Store) AccessToken() string { return s.get(KeyAccessToken) }

// RefreshToken returns the stored refresh token, or "".
func (s *Store) RefreshToken() string { return s.get(KeyRefreshToken) }

// SetCurrentUser stores the signed-in user as JSON.
func (s *Store) SetCurrentUser(u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(KeyCurrentUser, string(b))
}

// CurrentUser returns the stored user, or nil when absent or corrupt.
func (s *Store) CurrentUser() *models.User {
	raw := s.get(KeyCurrentUser)
	if raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// Clear drops all session state.
func (s *Store) Clear() {
	s.remove(KeyAccessToken)
	s.remove(KeyRefreshToken)
	s.remove(KeyCurrentUser)
}

// HasTokens reports whether both tokens are present.
func (s *Store) HasTokens() bool {
	return s.AccessToken() != "" && s.RefreshToken() != ""
}

// Restore rebuilds the session on startup: with both tokens present and
// a live refresh token it returns the stored user, rotating the pair
// when the access token has expired. Returns nil when no valid session
// can be restored.
func (s *Store) Restore(ctx context.Context, svc *auth.Service) *models.User {
	if !s.HasTokens() {
		return nil
	}
	u := s.CurrentUser()
	if u == nil {
		s.Clear()
		return nil
	}
	if auth.IsExpired(s.RefreshToken()) {
		logger.Info("session_refresh_token_expired")
		s.Clear()
		return nil
	}
	if auth.IsExpired(s.AccessToken()) {
		if !s.rotate(ctx, svc) {
			s.Clear()
			return nil
		}
		u = s.CurrentUser()
	}
	logger.Info("session_restored", "user", u.ID)
	return u
}
