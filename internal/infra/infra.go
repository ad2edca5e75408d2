// Package infra provides shared infrastructure components used across
// the application: request throttling, the REST client and logging.
package infra

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// --- Request throttling ---

// Throttle enforces a minimum spacing between outbound requests. It is safe
// for concurrent use; waiters are served one at a time.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle that lets one request through per delay.
// A non-positive delay disables throttling.
func NewThrottle(delay time.Duration) *Throttle {
	if delay <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// --- REST client ---

// RESTOptions configures NewRESTClient.
type RESTOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// NewRESTClient returns a JSON client with the given base URL and timeout.
// Requests are not retried.
func NewRESTClient(opts RESTOptions) *resty.Client {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	return c
}
