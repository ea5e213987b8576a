// Package quotes fetches prices, histories and symbol listings from the
// remote finance APIs.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "folio_tracker/internal/errors"
	"folio_tracker/internal/metrics"
)

// Kind labels a request for metrics and logs.
type Kind string

const (
	KindIndex   Kind = "index"
	KindMetal   Kind = "metal"
	KindEquity  Kind = "equity"
	KindHistory Kind = "history"
	KindSymbols Kind = "symbols"
)

// maxBody caps a single reply; symbol listings are the largest at a few MB.
const maxBody = 32 << 20

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	Rate    float64 // requests per second, <= 0 means unlimited
	Burst   int
}

// Client performs rate limited GETs behind a circuit breaker.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClient creates a Client. m may be nil.
func NewClient(opts Options, m *metrics.Metrics, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	c := &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, opts.Burst),
		metrics: m,
		logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "finance-api",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// a stopped batch is not an API failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, kind Kind, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, rawURL)
	})
	c.observe(kind, start, err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.Upstream("finance API temporarily unavailable", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Upstream(fmt.Sprintf("fetching %s data", kind), err)
	}
	return body.([]byte), nil
}

func (c *Client) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", redactErr(err))
	}
	req.Header.Set("User-Agent", "folio-tracker/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, redactErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, URL: redact(rawURL)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// redactErr hides the key in the URL quoted by transport and parse errors.
func redactErr(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redact(ue.URL)
	}
	return err
}

func (c *Client) observe(kind Kind, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	default:
		outcome = "error"
		c.logger.Debug("finance API request failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequests.WithLabelValues(string(kind), outcome).Inc()
	c.metrics.APILatency.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}
