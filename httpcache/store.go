package httpcache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"path/filepath"
	"time"

	"scribblehub-to-epub/config"
	apperrors "scribblehub-to-epub/pkg/errors"
)

// ErrMiss is returned by Store.Get when no entry exists for a URL.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "sh2epub:http:"

// Entry is a cached HTTP response.
type Entry struct {
	URL         string    `msgpack:"url"`
	StatusCode  int       `msgpack:"status_code"`
	ContentType string    `msgpack:"content_type"`
	Body        []byte    `msgpack:"body"`
	FetchedAt   time.Time `msgpack:"fetched_at"`
	ExpiresAt   time.Time `msgpack:"expires_at"`
}

// Expired reports whether the entry is no longer fresh at now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store persists responses keyed by URL
type Store interface {
	// Get returns the entry for url or ErrMiss
	Get(ctx context.Context, url string) (*Entry, error)

	// Set inserts or replaces the entry for e.URL
	Set(ctx context.Context, e *Entry) error

	// Delete removes the entry for url, if any
	Delete(ctx context.Context, url string) error

	// Purge removes entries that expired before the given time
	Purge(ctx context.Context, before time.Time) (int64, error)

	// Clear removes every entry
	Clear(ctx context.Context) (int64, error)

	Close() error
}

// Open returns the store selected by cfg.CacheBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.CacheBackend {
	case config.BackendSQLite:
		store, err := NewSQLiteStore(ctx, filepath.Join(cfg.CacheDir, "http.sqlite"))
		if err != nil {
			return nil, apperrors.NewCache(cfg.CacheDir, "failed to open sqlite cache", err)
		}
		return store, nil
	case config.BackendMemcache:
		return NewMemcacheStore(cfg.MemcacheAddr), nil
	case config.BackendRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB), nil
	case config.BackendNone:
		return NopStore{}, nil
	default:
		return nil, apperrors.NewConfiguration("unknown cache backend "+cfg.CacheBackend, nil)
	}
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}
