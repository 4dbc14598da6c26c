package httpcache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribblehub-to-epub/config"
	apperrors "scribblehub-to-epub/pkg/errors"
)

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	cfg.CacheBackend = config.BackendNone
	store, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, store)

	cfg.CacheBackend = "floppy"
	_, err = Open(ctx, cfg)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestNopStoreAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	store := NopStore{}
	require.NoError(t, store.Set(ctx, testEntry("https://example.com/a", time.Now(), time.Hour)))
	_, err := store.Get(ctx, "https://example.com/a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCacheKey(t *testing.T) {
	key := cacheKey("https://www.scribblehub.com/series/1/a/")
	assert.Len(t, key, len(keyPrefix)+40)
	assert.NotEqual(t, key, cacheKey("https://www.scribblehub.com/series/2/a/"))
}

func TestMemcacheExpiration(t *testing.T) {
	fetched := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ttl  time.Duration
		want int32
		ok   bool
	}{
		{"expired", 0, 0, false},
		{"sub second", 500 * time.Millisecond, 0, false},
		{"one hour", time.Hour, 3600, true},
		{"thirty days", 30 * 24 * time.Hour, 2592000, true},
		{"sixty days", 60 * 24 * time.Hour, int32(fetched.Add(60 * 24 * time.Hour).Unix()), true},
		{"far future", 200 * 365 * 24 * time.Hour, math.MaxInt32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := memcacheExpiration(fetched, fetched.Add(tt.ttl))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemcacheStore("localhost:11211")

	// Test if memcached is available
	_, err := store.client.Get("test")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	url := "https://example.com/memcache-test"
	require.NoError(t, store.Set(ctx, testEntry(url, time.Now(), time.Minute)))

	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "<html>"+url+"</html>", string(got.Body))

	require.NoError(t, store.Delete(ctx, url))
	_, err = store.Get(ctx, url)
	assert.ErrorIs(t, err, ErrMiss)
}

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore("localhost:6379", 0)
	defer store.Close()

	if _, err := store.client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	url := "https://example.com/redis-test"
	require.NoError(t, store.Set(ctx, testEntry(url, time.Now(), time.Minute)))

	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, 200, got.StatusCode)

	ttl, err := store.client.TTL(ctx, cacheKey(url)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	_, err = store.client.Get(ctx, cacheKey(url)).Result()
	assert.ErrorIs(t, err, redis.Nil)
}
