package utils

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"scribblehub-to-epub/logger"
)

type RestyOptions struct {
	UserAgent    string
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// NewRestyClient returns a client that retries transport errors, 429 and
// 5xx responses, honoring Retry-After.
func NewRestyClient(opts RestyOptions) *resty.Client {
	if opts.RetryMaxWait <= 0 {
		opts.RetryMaxWait = time.Minute
	}

	client := resty.New()
	client.SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext(ctx, network, addr)
		},
		TLSHandshakeTimeout: 10 * time.Second,
	})
	client.SetLogger(restyLogger{log: logger.ForComponent("http")})
	client.SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept-Charset", "utf-8")
	client.SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := strings.TrimSpace(resp.Header().Get("Retry-After")); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
					if t, err := http.ParseTime(retryAfter); err == nil && time.Until(t) > 0 {
						return time.Until(t), nil
					}
				}
			}
			return 0, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	return client
}

type restyLogger struct {
	log *logger.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.log.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.log.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.log.Debug().Msgf(format, v...) }
