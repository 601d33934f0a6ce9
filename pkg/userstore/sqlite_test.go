package userstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndFind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, "a@b.co", "alice", "hash1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.NotEmpty(t, u.CreatedAt)

	byEmail, err := s.FindByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.FindByEmail(ctx, "nobody@b.co")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExistsChecks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)

	ok, err := s.EmailExists(ctx, "a@b.co")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSoftDeleteHidesRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)

	require.NoError(t, s.SoftDelete(ctx, u.ID))

	_, err = s.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByEmail(ctx, "a@b.co")
	assert.ErrorIs(t, err, ErrNotFound)

	// the live-row unique index frees the email for reuse
	_, err = s.Create(ctx, "a@b.co", "alice2", "h2")
	assert.NoError(t, err)

	// deleting twice reports not found
	assert.ErrorIs(t, s.SoftDelete(ctx, u.ID), ErrNotFound)
}

func TestRestore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)

	// restoring a live row is an error
	assert.ErrorIs(t, s.Restore(ctx, u.ID), ErrNotFound)

	require.NoError(t, s.SoftDelete(ctx, u.ID))
	require.NoError(t, s.Restore(ctx, u.ID))

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.DeletedAt.Valid)
}

func TestHardDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)

	require.NoError(t, s.HardDelete(ctx, u.ID))
	assert.ErrorIs(t, s.HardDelete(ctx, u.ID), ErrNotFound)
	assert.ErrorIs(t, s.Restore(ctx, u.ID), ErrNotFound)
}

func TestUpdatePasswordAndProfile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, "a@b.co", "alice", "h1")
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, u.ID, "h2"))
	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	// empty fields keep current values
	got, err = s.UpdateProfile(ctx, u.ID, "new@b.co", "")
	require.NoError(t, err)
	assert.Equal(t, "new@b.co", got.Email)
	assert.Equal(t, "alice", got.Username)

	assert.ErrorIs(t, s.UpdatePassword(ctx, 9999, "h3"), ErrNotFound)
}

func TestGetStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u1, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)
	_, err = s.Create(ctx, "b@b.co", "bob", "h")
	require.NoError(t, err)
	require.NoError(t, s.SoftDelete(ctx, u1.ID))

	st, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalUsers)
	assert.Equal(t, 1, st.RecentUsers)
	assert.Equal(t, 1, st.DeletedUsers)
}

func TestPurgeDeletedBefore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, "a@b.co", "alice", "h")
	require.NoError(t, err)
	require.NoError(t, s.SoftDelete(ctx, u.ID))

	// cutoff before the deletion keeps the row
	n, err := s.PurgeDeletedBefore(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	// cutoff after the deletion removes it
	n, err = s.PurgeDeletedBefore(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.ErrorIs(t, s.Restore(ctx, u.ID), ErrNotFound)
}
