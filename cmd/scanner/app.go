package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"StockScanner/internal/cache"
	"StockScanner/internal/collector"
	"StockScanner/internal/config"
	"StockScanner/internal/metrics"
	"StockScanner/internal/notifier"
	"StockScanner/internal/recorder"
	"StockScanner/internal/scheduler"
	"StockScanner/internal/strategy"
)

// app holds the components shared by every sub-command.
type app struct {
	Metrics   *metrics.Metrics
	Cache     cache.Cache
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Telegram  *notifier.TelegramNotifier
	Scheduler *scheduler.Scheduler
}

func newFetcher(c *config.Config, m *metrics.Metrics) (collector.Fetcher, error) {
	tc := collector.DefaultTransportConfig()
	tc.ProxyURL = c.Proxy
	tc.Timeout = c.DataSource.Timeout
	tc.RequestsPerSecond = c.DataSource.RequestsPerSecond
	tc.Burst = c.DataSource.Burst
	tc.MaxRetries = uint64(c.DataSource.MaxRetries)

	switch c.DataSource.Provider {
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(tc, m), nil
	case config.ProviderAPI:
		return collector.NewAPIFetcher(c.DataSource.BaseURL, c.DataSource.APIKey, tc, m), nil
	case config.ProviderMock:
		return &collector.MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", c.DataSource.Provider)
	}
}

// newApp wires the components described by c. The recorder falls back to noop
// when the database cannot be opened.
func newApp(ctx context.Context, c *config.Config, watchlist []string) (*app, error) {
	m := metrics.NewMetrics()

	fetcher, err := newFetcher(c, m)
	if err != nil {
		return nil, err
	}
	log.Infof("data source: %s", fetcher.Name())

	store := cache.NewFromConfig(cache.Config{
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		KeyPrefix:     c.Cache.KeyPrefix,
	})
	cached := collector.NewCachedFetcher(fetcher, store, c.Cache.BarsTTL, c.Cache.QuoteTTL, m)

	col := collector.NewCollector(cached, c.Indicators, m)
	col.Bars = c.DataSource.Bars

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if c.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}

	a := &app{
		Metrics:   m,
		Cache:     store,
		Collector: col,
		Recorder:  rec,
	}

	var sender scheduler.Sender
	if c.Telegram.BotToken != "" {
		a.Telegram = notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Proxy)
		sender = a.Telegram
	}

	if len(watchlist) == 0 {
		watchlist = c.Watchlist
	}
	a.Scheduler = scheduler.NewScheduler(ctx, col, &strategy.Engine{Thresholds: c.Strategy}, sender, rec, m, scheduler.Options{
		Watchlist:   watchlist,
		Concurrency: c.Schedule.Concurrency,
	})
	return a, nil
}

func (a *app) Close() {
	if err := a.Recorder.Close(); err != nil {
		log.WithError(err).Warn("close recorder")
	}
	if closer, ok := a.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("close cache")
		}
	}
}

// commandTimeout bounds one-shot commands.
const commandTimeout = 5 * time.Minute
