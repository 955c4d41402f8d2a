package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzvengeance/gw2style/internal/config"
	"github.com/nzvengeance/gw2style/internal/models"
	"github.com/nzvengeance/gw2style/internal/skins"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "data", "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = New(&config.Config{DBDriver: "postgres"})
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.migrate())
	require.NoError(t, db.Ping(context.Background()))
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	var store skins.Store = db
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, skins.ErrNoSnapshot)

	generated := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	snap := skins.BuildSnapshot([]models.Skin{
		{ID: 10, Name: "Phoenix Helm", Type: "Armor", Details: &models.SkinDetails{Type: "Helm"}},
		{ID: 20, Name: "Ad Infinitum", Type: "Back"},
	}, generated)
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", got.Version)
	assert.True(t, generated.Equal(got.GeneratedAt))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, snap.Skins, got.Skins)

	// Saving again replaces rather than appends.
	require.NoError(t, store.Save(ctx, snap))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Skins, 2)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, skins.ErrNoSnapshot)
}

func TestSyncHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	last, err := db.GetLastSuccessfulSync(ctx, "skins")
	require.NoError(t, err)
	assert.Nil(t, last)

	first, err := db.InsertSyncHistory(ctx, "skins", "running")
	require.NoError(t, err)
	require.NoError(t, db.UpdateSyncHistory(ctx, first, "success", 42, ""))

	second, err := db.InsertSyncHistory(ctx, "skins", "running")
	require.NoError(t, err)
	require.NoError(t, db.UpdateSyncHistory(ctx, second, "error", 0, "api down"))

	history, err := db.GetLatestSyncHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, second, history[0].ID)
	assert.Equal(t, "error", history[0].Status)
	assert.Equal(t, "api down", history[0].ErrorMessage)
	assert.NotNil(t, history[0].CompletedAt)
	assert.Equal(t, 42, history[1].RecordCount)

	last, err = db.GetLastSuccessfulSync(ctx, "skins")
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	v, err := db.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, db.SetSetting(ctx, "skin_version", "2025-03-01"))
	require.NoError(t, db.SetSetting(ctx, "skin_version", "2025-04-01"))

	v, err = db.GetSetting(ctx, "skin_version")
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01", v)
}

func TestReplacePlaceholders(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", replacePlaceholders("SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, "SELECT 1", replacePlaceholders("SELECT 1"))
}
