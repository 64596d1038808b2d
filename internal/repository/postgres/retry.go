package postgres

import (
	"context"
	"errors"
	"net"
	"time"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/logger"

	"github.com/lib/pq"
)

const (
	maxAttempts = 3
	baseDelay   = 100 * time.Millisecond
)

// transient pq error classes: connection failures, serialization
// failures, deadlocks, insufficient resources.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			return true
		}
	}
	return false
}

// withRetry runs op up to maxAttempts times, doubling the delay between
// attempts, as long as the failure looks transient. A non-transient error
// propagates immediately; an exhausted transient one is surfaced as a
// TransientStoreError.
func withRetry(ctx context.Context, name string, op func() error) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op()
		if err == nil || !isTransient(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		logger.Warn("Retrying store operation", "op", name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return &domain.TransientStoreError{Op: name, Err: err}
}
