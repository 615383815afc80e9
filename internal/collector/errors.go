package collector

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is returned when an upstream keeps answering 429.
	ErrRateLimited = errors.New("upstream rate limited")
	// ErrUpstream marks any other non-2xx upstream answer.
	ErrUpstream = errors.New("upstream error")
	// ErrNoData is returned when an upstream answers without usable bars.
	ErrNoData = errors.New("no data returned")
	// ErrUnsupportedInterval is returned for intervals other than 1d and 1wk.
	ErrUnsupportedInterval = errors.New("unsupported interval")
)

// StatusError is a non-2xx HTTP answer from an upstream.
type StatusError struct {
	Source string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Source, e.Code)
	}
	return fmt.Sprintf("%s: status %d, body: %s", e.Source, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return ErrUpstream
}

// retryable reports whether the status is worth another attempt.
func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}
