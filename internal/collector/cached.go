package collector

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"StockScanner/internal/cache"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
)

// CachedFetcher memoizes another Fetcher's answers in a Cache.
// Cache failures are logged and the upstream is queried directly.
type CachedFetcher struct {
	Next     Fetcher
	Cache    cache.Cache
	BarsTTL  time.Duration
	QuoteTTL time.Duration
	Metrics  *metrics.Metrics
}

// NewCachedFetcher wraps next with c.
func NewCachedFetcher(next Fetcher, c cache.Cache, barsTTL, quoteTTL time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{
		Next:     next,
		Cache:    c,
		BarsTTL:  barsTTL,
		QuoteTTL: quoteTTL,
		Metrics:  m,
	}
}

func (f *CachedFetcher) Name() string { return f.Next.Name() }

// CacheKey fingerprints one upstream request.
func CacheKey(source, kind string, parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("scanner:%s:%s:%x", source, kind, sum)
}

func (f *CachedFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	key := CacheKey(f.Name(), "bars", symbol, interval, strconv.Itoa(limit))

	var bars []model.OHLCV
	if f.lookup(ctx, key, &bars) {
		return bars, nil
	}

	bars, err := f.Next.FetchBars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	f.store(ctx, key, bars, f.BarsTTL)
	return bars, nil
}

func (f *CachedFetcher) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	key := CacheKey(f.Name(), "quote", symbol)

	var price float64
	if f.lookup(ctx, key, &price) {
		return price, nil
	}

	price, err := f.Next.FetchQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	f.store(ctx, key, price, f.QuoteTTL)
	return price, nil
}

func (f *CachedFetcher) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := f.Cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache get failed")
		f.Metrics.ObserveCache("error")
		return false
	}
	if !ok {
		f.Metrics.ObserveCache("miss")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache entry undecodable")
		f.Metrics.ObserveCache("error")
		return false
	}
	f.Metrics.ObserveCache("hit")
	return true
}

func (f *CachedFetcher) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}
	if err := f.Cache.Set(ctx, key, raw, ttl); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}
