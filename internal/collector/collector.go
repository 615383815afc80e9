package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"StockScanner/internal/calculator"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
)

// DefaultDailyBars covers a 52-week range plus the slow SMA warm-up.
const DefaultDailyBars = 300

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Params  model.IndicatorParams
	Bars    int
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, params model.IndicatorParams, m *metrics.Metrics) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Params:  params,
		Bars:    DefaultDailyBars,
		Metrics: m,
	}
}

// Collect fetches daily bars and the current price for symbol and computes all indicators.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.IndicatorReport, error) {
	return c.CollectWith(ctx, symbol, model.IntervalDaily, c.Bars, c.Params)
}

// CollectWith is Collect with an explicit interval, bar count and parameter set.
func (c *Collector) CollectWith(ctx context.Context, symbol, interval string, limit int, params model.IndicatorParams) (*model.IndicatorReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if limit <= 0 {
		limit = DefaultDailyBars
	}

	bars, err := c.Fetcher.FetchBars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s bars: %w", interval, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s bars: %w", interval, ErrNoData)
	}

	price, err := c.Fetcher.FetchQuote(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		price = bars[len(bars)-1].Close
		log.WithError(err).Warnf("%s: quote fetch failed, using last close %.2f", symbol, price)
	}

	start := time.Now()
	report := BuildReport(symbol, interval, bars, price, params)
	c.Metrics.ObserveCompute(time.Since(start))
	return report, nil
}

// BuildReport runs the indicator engine over bars. Series the data is too short for
// stay empty and their latest values stay zero.
func BuildReport(symbol, interval string, bars []model.OHLCV, price float64, p model.IndicatorParams) *model.IndicatorReport {
	closes := calculator.Closes(bars)

	r := &model.IndicatorReport{
		Symbol:       symbol,
		Interval:     interval,
		Params:       p,
		Bars:         len(bars),
		CurrentPrice: price,
		ComputedAt:   time.Now().UTC(),
		SMAFast:      calculator.SMA(closes, p.SMAFast),
		SMASlow:      calculator.SMA(closes, p.SMASlow),
		EMA:          calculator.EMA(closes, p.EMA),
		RSI:          calculator.RSI(closes, p.RSI),
		MACD:         calculator.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
	}

	warnEmpty := func(name string, series []float64) float64 {
		v, ok := calculator.Last(series)
		if !ok {
			log.Warnf("%s: %s unavailable from %d bars", symbol, name, len(bars))
		}
		return v
	}
	r.Latest.SMAFast = warnEmpty(fmt.Sprintf("SMA%d", p.SMAFast), r.SMAFast)
	r.Latest.SMASlow = warnEmpty(fmt.Sprintf("SMA%d", p.SMASlow), r.SMASlow)
	r.Latest.EMA = warnEmpty(fmt.Sprintf("EMA%d", p.EMA), r.EMA)
	r.Latest.RSI = warnEmpty(fmt.Sprintf("RSI%d", p.RSI), r.RSI)
	r.Latest.MACD, _ = calculator.Last(r.MACD.MACD)
	r.Latest.MACDSignal, _ = calculator.Last(r.MACD.Signal)
	r.Latest.MACDHistogram = warnEmpty("MACD histogram", r.MACD.Histogram)

	lookback := calculator.Lookback52Week
	if interval == model.IntervalWeekly {
		lookback = 52
	}
	if h, l, err := calculator.Range(bars, lookback); err != nil {
		log.WithError(err).Warnf("%s: 52-week range calculation failed", symbol)
		r.Latest.High52w, r.Latest.Low52w = price, price
	} else {
		r.Latest.High52w, r.Latest.Low52w = h, l
	}
	if pos, err := calculator.RangePosition(price, r.Latest.High52w, r.Latest.Low52w); err != nil {
		log.WithError(err).Warnf("%s: 52-week position calculation failed", symbol)
		r.Latest.Position52w = 0.5
	} else {
		r.Latest.Position52w = pos
	}
	return r
}
