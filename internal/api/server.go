// Package api exposes indicators, scans and scan history as JSON over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"StockScanner/internal/collector"
	"StockScanner/internal/metrics"
	"StockScanner/internal/recorder"
	"StockScanner/internal/scheduler"
)

// Scanner runs a full scan of one symbol.
type Scanner interface {
	ScanSymbol(ctx context.Context, symbol string) (*scheduler.Result, error)
}

// Server holds the handler dependencies.
type Server struct {
	Collector *collector.Collector
	Scanner   Scanner
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/indicators/:symbol", s.getIndicators)
	v1.POST("/indicators", s.computeIndicators)
	v1.GET("/scan/:symbol", s.getScan)
	v1.GET("/history/:symbol", s.getHistory)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(log.Fields{
			"status":  c.Writer.Status(),
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"latency": time.Since(start).Round(time.Microsecond).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
		} else {
			entry.Debug("request")
		}
	}
}

// Serve runs an HTTP server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("api listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("api server stopped")
	return nil
}
