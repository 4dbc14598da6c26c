package httpcache

import (
	"context"
	"time"
)

// NopStore never stores anything.
type NopStore struct{}

func (NopStore) Get(ctx context.Context, url string) (*Entry, error)        { return nil, ErrMiss }
func (NopStore) Set(ctx context.Context, e *Entry) error                    { return nil }
func (NopStore) Delete(ctx context.Context, url string) error               { return nil }
func (NopStore) Purge(ctx context.Context, before time.Time) (int64, error) { return 0, nil }
func (NopStore) Clear(ctx context.Context) (int64, error)                   { return 0, nil }
func (NopStore) Close() error                                               { return nil }
