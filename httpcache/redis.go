package httpcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStore keeps msgpack-encoded entries under keyPrefix with a Redis TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context, url string) (*Entry, error) {
	data, err := r.client.Get(ctx, cacheKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *RedisStore) Set(ctx context.Context, e *Entry) error {
	ttl := e.ExpiresAt.Sub(e.FetchedAt)
	if ttl <= 0 {
		return nil
	}
	data, err := msgpack.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, cacheKey(e.URL), data, ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, url string) error {
	return r.client.Del(ctx, cacheKey(url)).Err()
}

// Purge is a no-op; keys carry their own TTL.
func (r *RedisStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// Clear deletes every key under keyPrefix.
func (r *RedisStore) Clear(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
