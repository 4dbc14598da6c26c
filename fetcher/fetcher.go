package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"scribblehub-to-epub/config"
	"scribblehub-to-epub/httpcache"
	"scribblehub-to-epub/logger"
	apperrors "scribblehub-to-epub/pkg/errors"
	"scribblehub-to-epub/utils"
)

type Options struct {
	Store             httpcache.Store
	CacheTTL          time.Duration
	RequestsPerMinute int

	UserAgent    string
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration

	// Now defaults to time.Now
	Now func() time.Time
}

// Stats counts how requests were served.
type Stats struct {
	Hits   int
	Misses int
}

// Fetcher performs cached, rate-limited GET requests. Cache hits bypass
// the limiter.
type Fetcher struct {
	client  *resty.Client
	store   httpcache.Store
	limiter *rate.Limiter
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
	stats   Stats
}

func New(opts Options) (*Fetcher, error) {
	if opts.RequestsPerMinute < 1 {
		return nil, apperrors.NewConfiguration("requests per minute must be at least 1", nil)
	}
	if opts.Store == nil {
		opts.Store = httpcache.NopStore{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	client := utils.NewRestyClient(utils.RestyOptions{
		UserAgent:    opts.UserAgent,
		Timeout:      opts.Timeout,
		RetryCount:   opts.RetryCount,
		RetryWait:    opts.RetryWait,
		RetryMaxWait: opts.RetryMaxWait,
	})

	return &Fetcher{
		client:  client,
		store:   opts.Store,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1),
		ttl:     opts.CacheTTL,
		now:     opts.Now,
		log:     logger.ForComponent("fetcher"),
	}, nil
}

// NewFromConfig opens the configured cache store and builds a Fetcher on it.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Fetcher, error) {
	store, err := httpcache.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	f, err := New(Options{
		Store:             store,
		CacheTTL:          cfg.CacheTTL,
		RequestsPerMinute: cfg.RequestsPerMinute,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.Timeout,
		RetryCount:        cfg.RetryCount,
		RetryWait:         cfg.RetryWait,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return f, nil
}

// Get returns the response for url, from the cache when a fresh entry
// exists. Non-2xx responses are returned as network errors and never cached.
func (f *Fetcher) Get(ctx context.Context, url string) (*httpcache.Entry, error) {
	entry, err := f.store.Get(ctx, url)
	switch {
	case err == nil && !entry.Expired(f.now()):
		f.stats.Hits++
		f.log.Debug().Str("url", url).Msg("cache hit")
		return entry, nil
	case err != nil && !errors.Is(err, httpcache.ErrMiss):
		f.log.Warn().Err(err).Str("url", url).Msg("cache read failed")
	}
	f.stats.Misses++

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	f.log.Debug().Str("url", url).Msg("fetching")
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewNetwork(url, "request failed", err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.NewNetwork(url, fmt.Sprintf("unexpected status %d", resp.StatusCode()), nil)
	}

	fetched := f.now()
	entry = &httpcache.Entry{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
		FetchedAt:   fetched,
		ExpiresAt:   fetched.Add(f.ttl),
	}
	if err := f.store.Set(ctx, entry); err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("cache write failed")
	}
	return entry, nil
}

// GetHTML fetches url and returns the body decoded to UTF-8.
func (f *Fetcher) GetHTML(ctx context.Context, url string) (string, error) {
	entry, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return decodeBody(entry.Body, entry.ContentType)
}

func decodeBody(body []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return string(body), nil
	}
	decoded, err := encoding.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return string(decoded), nil
}

func (f *Fetcher) Stats() Stats {
	return f.stats
}

func (f *Fetcher) Close() error {
	return f.store.Close()
}
