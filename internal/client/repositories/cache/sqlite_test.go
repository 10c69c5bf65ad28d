package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cache (
    key        TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestPutGet_RoundTripAndUpsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, r.Put(ctx, "visas", []byte(`[1]`), t0))
	require.NoError(t, r.Put(ctx, "visas", []byte(`[1,2]`), t0.Add(time.Minute)))

	e, err := r.Get(ctx, "visas")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), e.Payload)
	assert.True(t, e.UpdatedAt.Equal(t0.Add(time.Minute)), "updated_at = %v", e.UpdatedAt)
}

func TestGet_MissingIsNotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeletePrefix_OnlyMatchingKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Put(ctx, "user:a@b.com:visas", []byte("1"), now))
	require.NoError(t, r.Put(ctx, "user:a@b.com:apps", []byte("2"), now))
	require.NoError(t, r.Put(ctx, "userXa@b.com", []byte("3"), now))
	require.NoError(t, r.Put(ctx, "visas", []byte("4"), now))

	n, err := r.DeletePrefix(ctx, "user:a@b.com:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = r.Get(ctx, "visas")
	require.NoError(t, err)
	_, err = r.Get(ctx, "userXa@b.com")
	require.NoError(t, err)
}

func TestPruneOlderThan(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Put(ctx, "old", []byte("x"), now.Add(-48*time.Hour)))
	require.NoError(t, r.Put(ctx, "new", []byte("y"), now))

	n, err := r.PruneOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Get(ctx, "old")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
