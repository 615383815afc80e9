package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"StockScanner/internal/metrics"
)

const maxErrorBody = 256

// TransportConfig controls the HTTP behavior shared by upstream fetchers.
type TransportConfig struct {
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
	MaxRetries        uint64
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
}

// DefaultTransportConfig returns conservative settings for public market data APIs.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		MaxRetries:        3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
	}
}

// httpClient performs rate-limited GETs with exponential-backoff retry.
type httpClient struct {
	source  string
	client  *http.Client
	limiter *rate.Limiter
	cfg     TransportConfig
	metrics *metrics.Metrics
}

func newHTTPClient(source string, cfg TransportConfig, m *metrics.Metrics) *httpClient {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.WithError(err).Warnf("%s: ignoring invalid proxy url", source)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &httpClient{
		source: source,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		metrics: m,
	}
}

// get fetches endpoint and returns the body of a 200 answer.
// Network errors, 429 and 5xx are retried; other statuses fail at once.
func (c *httpClient) get(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	start := time.Now()
	var body []byte

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("%s rate limiter wait: %w", c.source, err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, vs := range header {
			req.Header[k] = vs
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%s fetch: %w", c.source, err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s read body: %w", c.source, err)
		}
		if resp.StatusCode != http.StatusOK {
			if len(b) > maxErrorBody {
				b = b[:maxErrorBody]
			}
			serr := &StatusError{Source: c.source, Code: resp.StatusCode, Body: string(b)}
			if serr.retryable() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if c.cfg.InitialBackoff > 0 {
		bo.InitialInterval = c.cfg.InitialBackoff
	}
	if c.cfg.MaxBackoff > 0 {
		bo.MaxInterval = c.cfg.MaxBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, d time.Duration) {
		log.WithError(err).Warnf("%s: retrying in %s", c.source, d)
	})

	c.metrics.ObserveFetch(c.source, fetchStatus(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func fetchStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
