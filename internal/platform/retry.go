package platform

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// RetryPolicy configures transport-level retries for forge API calls.
// The action core never retries on its own; adapters wrap their HTTP calls with Retry.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Logger       *slog.Logger
}

// DefaultRetryPolicy retries transient network failures three times starting at 1s.
func DefaultRetryPolicy(logger *slog.Logger) RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialDelay: time.Second, Logger: logger}
}

var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn with exponential backoff while it fails with a transient error.
func Retry(ctx context.Context, p RetryPolicy, op string, fn func() error) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := p.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying platform call", "op", op, "attempt", attempt+1, "delay", delay)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		logger.Warn("transient platform error", "op", op, "attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}

var retryablePatterns = []string{
	"eof",
	"timeout",
	"connection refused",
	"temporary failure",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
}

// IsRetryable reports whether err looks like a transient network failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
