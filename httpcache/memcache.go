package httpcache

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/vmihailenco/msgpack/v5"
)

// memcached reads expirations longer than this as absolute Unix times.
const maxRelativeExpiration = 30 * 24 * time.Hour

// MemcacheStore keeps msgpack-encoded entries in memcached, which expires
// them on its own.
type MemcacheStore struct {
	client *memcache.Client
}

func NewMemcacheStore(serverAddr string) *MemcacheStore {
	return &MemcacheStore{
		client: memcache.New(serverAddr),
	}
}

func (m *MemcacheStore) Get(ctx context.Context, url string) (*Entry, error) {
	item, err := m.client.Get(cacheKey(url))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var e Entry
	if err := msgpack.Unmarshal(item.Value, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (m *MemcacheStore) Set(ctx context.Context, e *Entry) error {
	expiration, ok := memcacheExpiration(e.FetchedAt, e.ExpiresAt)
	if !ok {
		return nil
	}
	data, err := msgpack.Marshal(e)
	if err != nil {
		return err
	}
	return m.client.Set(&memcache.Item{
		Key:        cacheKey(e.URL),
		Value:      data,
		Expiration: expiration,
	})
}

// memcacheExpiration converts an entry lifetime into memcached's Expiration
// field. It reports false when the entry should not be stored at all.
func memcacheExpiration(fetchedAt, expiresAt time.Time) (int32, bool) {
	ttl := expiresAt.Sub(fetchedAt)
	if ttl < time.Second {
		return 0, false
	}
	if ttl <= maxRelativeExpiration {
		return int32(ttl / time.Second), true
	}
	unix := expiresAt.Unix()
	if unix > math.MaxInt32 {
		unix = math.MaxInt32
	}
	return int32(unix), true
}

func (m *MemcacheStore) Delete(ctx context.Context, url string) error {
	err := m.client.Delete(cacheKey(url))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Purge is a no-op; memcached drops expired items itself.
func (m *MemcacheStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// Clear flushes the whole server. memcached cannot enumerate keys, so the
// number of removed entries is unknown and reported as 0.
func (m *MemcacheStore) Clear(ctx context.Context) (int64, error) {
	return 0, m.client.FlushAll()
}

func (m *MemcacheStore) Close() error {
	return nil
}
