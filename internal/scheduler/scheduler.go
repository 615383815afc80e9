// Package scheduler runs watchlist scans on a cron schedule and on demand.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"StockScanner/internal/collector"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
	"StockScanner/internal/notifier"
	"StockScanner/internal/recorder"
	"StockScanner/internal/strategy"
)

const (
	defaultConcurrency = 4
	sendRetries        = 3
)

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Evaluator turns an indicator report into a signal.
type Evaluator interface {
	Evaluate(r *model.IndicatorReport) *model.ScanSignal
}

// Result is one completed symbol scan.
type Result struct {
	ID     string                 `json:"id"`
	Report *model.IndicatorReport `json:"report"`
	Signal *model.ScanSignal      `json:"signal"`
}

// Options configures a Scheduler.
type Options struct {
	Watchlist   []string
	Concurrency int
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    Evaluator
	Notifier  Sender // nil disables alerts
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Ctx       context.Context

	mu        sync.RWMutex
	watchlist []string
	limit     int
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, engine Evaluator, sender Sender, rec recorder.Recorder, m *metrics.Metrics, opts Options) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if engine == nil {
		engine = strategy.NewEngine(strategy.DefaultThresholds())
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = defaultConcurrency
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Engine:    engine,
		Notifier:  sender,
		Recorder:  rec,
		Metrics:   m,
		Ctx:       ctx,
		watchlist: normalize(opts.Watchlist),
		limit:     limit,
	}
}

func normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Watchlist returns a copy of the watched symbols.
func (s *Scheduler) Watchlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.watchlist...)
}

// RegisterAll registers the scan task and, when summaryCron is set, the summary task.
func (s *Scheduler) RegisterAll(scanCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if summaryCron != "" {
		if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
			return fmt.Errorf("register summary task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// ScanSymbol collects, evaluates and records one symbol.
func (s *Scheduler) ScanSymbol(ctx context.Context, symbol string) (*Result, error) {
	report, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	signal := s.Engine.Evaluate(report)

	snap := &recorder.ScanSnapshot{
		Timestamp: report.ComputedAt,
		Report:    report,
		Signal:    signal,
	}
	if err := s.Recorder.RecordScan(ctx, snap); err != nil {
		log.WithError(err).Errorf("record scan %s", report.Symbol)
	}
	s.Metrics.ObserveScan(signal.Tier.Label)

	log.WithFields(log.Fields{
		"symbol": report.Symbol,
		"score":  fmt.Sprintf("%+.3f", signal.TotalScore),
		"tier":   signal.Tier.Label,
	}).Debug("scan complete")

	return &Result{ID: snap.ID, Report: report, Signal: signal}, nil
}

// RunNow scans every watchlist symbol concurrently. Rows keep watchlist order;
// a failed symbol carries its error instead of a report.
func (s *Scheduler) RunNow(ctx context.Context) []notifier.WatchlistRow {
	symbols := s.Watchlist()
	rows := make([]notifier.WatchlistRow, len(symbols))

	s.mu.RLock()
	limit := s.limit
	s.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(limit)
	for i, sym := range symbols {
		g.Go(func() error {
			rows[i].Symbol = sym
			res, err := s.ScanSymbol(ctx, sym)
			if err != nil {
				log.WithError(err).Errorf("scan %s", sym)
				rows[i].Err = err
				return nil
			}
			rows[i].Report = res.Report
			rows[i].Signal = res.Signal
			rows[i].Symbol = res.Report.Symbol
			return nil
		})
	}
	g.Wait()
	return rows
}

func (s *Scheduler) scanTask() {
	start := time.Now()
	log.Infof("running watchlist scan (%d symbols)", len(s.Watchlist()))

	rows := s.RunNow(s.Ctx)

	var alerts, failed int
	for _, row := range rows {
		if row.Err != nil {
			failed++
			continue
		}
		if row.Signal.Tier.Neutral {
			continue
		}
		alerts++
		s.alert(row)
	}
	log.Infof("watchlist scan done in %s: %d symbols, %d alerts, %d failed",
		time.Since(start).Round(time.Millisecond), len(rows), alerts, failed)
}

func (s *Scheduler) summaryTask() {
	log.Info("running watchlist summary")
	rows := s.RunNow(s.Ctx)
	s.trySend(notifier.FormatWatchlist(rows, time.Now()))
}

func (s *Scheduler) alert(row notifier.WatchlistRow) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatAlert(row.Report, row.Signal), sendRetries)

	evt := &recorder.AlertEvent{
		Symbol:    row.Report.Symbol,
		Tier:      row.Signal.Tier.Label,
		Delivered: err == nil,
	}
	if err != nil {
		log.WithError(err).Errorf("send alert %s", row.Report.Symbol)
		evt.Error = err.Error()
		s.Metrics.ObserveAlert("failed")
	} else {
		s.Metrics.ObserveAlert("sent")
	}
	if err := s.Recorder.RecordAlert(s.Ctx, evt); err != nil {
		log.WithError(err).Error("record alert")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/scan@MyBot AAPL" in group chats
	cmd := strings.ToLower(fields[0])
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/scan":
		if len(fields) < 2 {
			return "usage: /scan SYMBOL"
		}
		sym := strings.ToUpper(fields[1])
		res, err := s.ScanSymbol(ctx, sym)
		if err != nil {
			return notifier.FormatError("scan "+sym, err)
		}
		return notifier.FormatScanReport(res.Report, res.Signal)
	case "/watchlist":
		return notifier.FormatWatchlist(s.RunNow(ctx), time.Now())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		log.WithError(err).Error("send notification")
	}
}
