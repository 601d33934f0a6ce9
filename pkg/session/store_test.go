package session

import (
	"context"
	"path/filepath"
	"testing"

	"synapse/pkg/auth"
	"synapse/pkg/models"
	"synapse/pkg/userstore"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	users, err := userstore.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("userstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = users.Close() })
	return auth.NewService(users, auth.NewTokenManager("a", "r"))
}

func TestTokenPersistence(t *testing.T) {
	s := newStore(t)
	if s.HasTokens() {
		t.Fatalf("fresh store has tokens")
	}
	if err := s.SetTokens("acc", "ref"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if s.AccessToken() != "acc" || s.RefreshToken() != "ref" {
		t.Fatalf("tokens not persisted")
	}
	if !s.HasTokens() {
		t.Fatalf("HasTokens = false")
	}

	s.Clear()
	if s.HasTokens() || s.AccessToken() != "" {
		t.Fatalf("Clear left state behind")
	}
}

func TestCurrentUserRoundTrip(t *testing.T) {
	s := newStore(t)
	if s.CurrentUser() != nil {
		t.Fatalf("fresh store has a user")
	}
	u := &models.User{ID: "1", Email: "a@b.co", Username: "alice"}
	if err := s.SetCurrentUser(u); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}
	got := s.CurrentUser()
	if got == nil || got.ID != "1" || got.Username != "alice" {
		t.Fatalf("got %+v", got)
	}
}

func TestRestoreRequiresBothTokens(t *testing.T) {
	s := newStore(t)
	svc := newAuthService(t)
	if u := s.Restore(context.Background(), svc); u != nil {
		t.Fatalf("restored empty session: %+v", u)
	}
}

func TestRestoreValidSession(t *testing.T) {
	s := newStore(t)
	svc := newAuthService(t)
	reg := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@b.co", Username: "alice", Password: "Secret1",
	})
	if !reg.Success {
		t.Fatalf("register: %s", reg.Message)
	}
	if err := s.SetTokens(reg.AccessToken, reg.RefreshToken); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if err := s.SetCurrentUser(reg.User); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}

	u := s.Restore(context.Background(), svc)
	if u == nil || u.Username != "alice" {
		t.Fatalf("restore failed: %+v", u)
	}
}

func TestRestoreExpiredAccessRotates(t *testing.T) {
	s := newStore(t)
	svc := newAuthService(t)
	reg := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@b.co", Username: "alice", Password: "Secret1",
	})
	if !reg.Success {
		t.Fatalf("register: %s", reg.Message)
	}
	// a garbage access token counts as expired; the live refresh token
	// must carry the rotation
	if err := s.SetTokens("expired-garbage", reg.RefreshToken); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if err := s.SetCurrentUser(reg.User); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}

	u := s.Restore(context.Background(), svc)
	if u == nil {
		t.Fatalf("restore with live refresh token failed")
	}
	if s.AccessToken() == "expired-garbage" {
		t.Fatalf("access token not rotated")
	}
}

func TestRestoreDeadRefreshClears(t *testing.T) {
	s := newStore(t)
	svc := newAuthService(t)
	if err := s.SetTokens("junk", "junk"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if err := s.SetCurrentUser(&models.User{ID: "1"}); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}
	if u := s.Restore(context.Background(), svc); u != nil {
		t.Fatalf("restored dead session")
	}
	if s.HasTokens() {
		t.Fatalf("dead session not cleared")
	}
}
