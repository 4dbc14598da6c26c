package httpcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "cache", "http.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(url string, fetched time.Time, ttl time.Duration) *Entry {
	return &Entry{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte("<html>" + url + "</html>"),
		FetchedAt:   fetched,
		ExpiresAt:   fetched.Add(ttl),
	}
}

func TestSQLiteStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	_, err := store.Get(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, ErrMiss)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, testEntry("https://example.com/a", now, time.Hour)))

	got, err := store.Get(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", got.ContentType)
	assert.Equal(t, "<html>https://example.com/a</html>", string(got.Body))
	assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.False(t, got.Expired(now.Add(30*time.Minute)))
	assert.True(t, got.Expired(now.Add(time.Hour)))
}

func TestSQLiteStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Set(ctx, testEntry("https://example.com/a", now, time.Hour)))
	updated := testEntry("https://example.com/a", now.Add(time.Hour), time.Hour)
	updated.Body = []byte("new")
	require.NoError(t, store.Set(ctx, updated))

	got, err := store.Get(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got.Body))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteStorePurgeAndClear(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Set(ctx, testEntry("https://example.com/old", now.Add(-2*time.Hour), time.Hour)))
	require.NoError(t, store.Set(ctx, testEntry("https://example.com/new", now, time.Hour)))
	require.NoError(t, store.Set(ctx, testEntry("https://example.com/other", now, time.Hour)))

	purged, err := store.Purge(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.Get(ctx, "https://example.com/old")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Delete(ctx, "https://example.com/other"))
	require.NoError(t, store.Delete(ctx, "https://example.com/missing"))

	cleared, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "http.sqlite")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, testEntry("https://example.com/a", now, time.Hour)))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "<html>https://example.com/a</html>", string(got.Body))
}
