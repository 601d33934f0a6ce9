package retention

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"synapse/pkg/config"
	"synapse/pkg/userstore"
)

func openUsers(t *testing.T) *userstore.Store {
	t.Helper()
	s, err := userstore.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("userstore.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), config.RetentionConfig{}, openUsers(t))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}

func TestStartRejectsBadConfig(t *testing.T) {
	users := openUsers(t)
	if _, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "not a cron"}, users); err == nil {
		t.Fatalf("invalid cron accepted")
	}
	if _, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Period: "sideways"}, users); err == nil {
		t.Fatalf("invalid period accepted")
	}
}

func TestRunOncePurgesOldDeletions(t *testing.T) {
	users := openUsers(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "a@b.co", "alice", "h")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := users.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// with a long period the fresh deletion survives
	if err := RunOnce(ctx, users, 24*time.Hour); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if err := users.Restore(ctx, u.ID); err != nil {
		t.Fatalf("row purged too early: %v", err)
	}
	if err := users.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	// a cutoff ahead of now purges everything already deleted
	if err := RunOnce(ctx, users, -time.Hour); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if err := users.Restore(ctx, u.ID); err != userstore.ErrNotFound {
		t.Fatalf("expected purge, got %v", err)
	}
}
