package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"StockScanner/internal/calculator"
	"StockScanner/internal/collector"
	"StockScanner/internal/model"
)

const (
	maxBars    = 2000
	maxCloses  = 100000
	maxHistory = 500
	// maxPeriod bounds every indicator period; SMA and RSI cost O(len(closes) * period).
	maxPeriod = 500
)

func badRequest(c *gin.Context, format string, args ...interface{}) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(format, args...)})
}

// upstreamError maps a fetch failure to a status code.
func upstreamError(c *gin.Context, symbol string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, collector.ErrUnsupportedInterval):
		status = http.StatusBadRequest
	case errors.Is(err, collector.ErrNoData):
		status = http.StatusNotFound
	}
	log.WithError(err).Warnf("api: %s", symbol)
	c.JSON(status, gin.H{"error": err.Error(), "symbol": symbol})
}

func symbolParam(c *gin.Context) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if sym == "" || len(sym) > 32 {
		badRequest(c, "invalid symbol")
		return "", false
	}
	return sym, true
}

// intQuery reads a positive integer query parameter, returning def when absent.
func intQuery(c *gin.Context, name string, def, upper int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || (upper > 0 && v > upper) {
		if upper > 0 {
			badRequest(c, "%s must be an integer in [1, %d]", name, upper)
		} else {
			badRequest(c, "%s must be a positive integer", name)
		}
		return 0, false
	}
	return v, true
}

func validMACD(c *gin.Context, p model.IndicatorParams) bool {
	if p.MACDFast >= p.MACDSlow {
		badRequest(c, "fast must be below slow")
		return false
	}
	return true
}

func (s *Server) getIndicators(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}

	interval := c.DefaultQuery("interval", model.IntervalDaily)
	if interval != model.IntervalDaily && interval != model.IntervalWeekly {
		badRequest(c, "interval must be %s or %s", model.IntervalDaily, model.IntervalWeekly)
		return
	}

	p := s.Collector.Params
	limit := s.Collector.Bars
	for _, q := range []struct {
		name  string
		dst   *int
		upper int
	}{
		{"limit", &limit, maxBars},
		{"sma", &p.SMAFast, maxPeriod},
		{"sma_slow", &p.SMASlow, maxPeriod},
		{"ema", &p.EMA, maxPeriod},
		{"rsi", &p.RSI, maxPeriod},
		{"fast", &p.MACDFast, maxPeriod},
		{"slow", &p.MACDSlow, maxPeriod},
		{"signal", &p.MACDSignal, maxPeriod},
	} {
		v, ok := intQuery(c, q.name, *q.dst, q.upper)
		if !ok {
			return
		}
		*q.dst = v
	}
	if !validMACD(c, p) {
		return
	}

	report, err := s.Collector.CollectWith(c.Request.Context(), sym, interval, limit, p)
	if err != nil {
		upstreamError(c, sym, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// computeRequest is the body of POST /api/v1/indicators. Absent periods use the defaults.
type computeRequest struct {
	Closes []float64 `json:"closes"`
	SMA    *int      `json:"sma"`
	EMA    *int      `json:"ema"`
	RSI    *int      `json:"rsi"`
	Fast   *int      `json:"fast"`
	Slow   *int      `json:"slow"`
	Signal *int      `json:"signal"`
}

type computeResponse struct {
	Params model.IndicatorParams `json:"params"`
	SMA    []float64             `json:"sma"`
	EMA    []float64             `json:"ema"`
	RSI    []float64             `json:"rsi"`
	MACD   model.MACDSeries      `json:"macd"`
}

func (s *Server) computeIndicators(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body: %v", err)
		return
	}
	if req.Closes == nil {
		badRequest(c, "closes is required")
		return
	}
	if len(req.Closes) > maxCloses {
		badRequest(c, "at most %d closes", maxCloses)
		return
	}

	p := model.DefaultIndicatorParams()
	for _, f := range []struct {
		name string
		src  *int
		dst  *int
	}{
		{"sma", req.SMA, &p.SMAFast},
		{"ema", req.EMA, &p.EMA},
		{"rsi", req.RSI, &p.RSI},
		{"fast", req.Fast, &p.MACDFast},
		{"slow", req.Slow, &p.MACDSlow},
		{"signal", req.Signal, &p.MACDSignal},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < 1 || *f.src > maxPeriod {
			badRequest(c, "%s must be an integer in [1, %d]", f.name, maxPeriod)
			return
		}
		*f.dst = *f.src
	}
	if !validMACD(c, p) {
		return
	}

	c.JSON(http.StatusOK, computeResponse{
		Params: p,
		SMA:    calculator.SMA(req.Closes, p.SMAFast),
		EMA:    calculator.EMA(req.Closes, p.EMA),
		RSI:    calculator.RSI(req.Closes, p.RSI),
		MACD:   calculator.MACD(req.Closes, p.MACDFast, p.MACDSlow, p.MACDSignal),
	})
}

func (s *Server) getScan(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	res, err := s.Scanner.ScanSymbol(c.Request.Context(), sym)
	if err != nil {
		upstreamError(c, sym, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getHistory(c *gin.Context) {
	sym, ok := symbolParam(c)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", 20, maxHistory)
	if !ok {
		return
	}
	recs, err := s.Recorder.RecentScans(c.Request.Context(), sym, limit)
	if err != nil {
		log.WithError(err).Errorf("api: history %s", sym)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": sym, "scans": recs})
}
