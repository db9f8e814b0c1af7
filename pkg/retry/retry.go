package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	mysqldriver "github.com/go-sql-driver/mysql"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

type Config struct {
	MaxAttempts  uint64
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}
}

// Notify observes each retry: the error that caused it, the delay before the
// next attempt, and the attempt number that just failed (1-based).
type Notify func(err error, delay time.Duration, attempt int)

// Do runs op with bounded exponential backoff. Only transient storage errors
// are retried; anything else fails fast. When all attempts fail, the returned
// error wraps both ErrRetriesExhausted and the last underlying failure.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error, notify Notify) error {
	if cfg.MaxAttempts == 0 {
		cfg = DefaultConfig()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	b.Multiplier = cfg.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	var attempt int

	wrapped := func() error {
		attempt++

		err := op(ctx)
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	onRetry := func(err error, delay time.Duration) {
		if notify != nil {
			notify(err, delay, attempt)
		}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxAttempts-1), ctx)

	err := backoff.RetryNotify(wrapped, bo, onRetry)
	if err == nil {
		return nil
	}

	if attempt >= int(cfg.MaxAttempts) {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}
	return err
}

// IsTransient reports whether err is worth retrying: connection-level
// failures and lock contention, never constraint violations or context
// cancellation.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}

	mysqlErr := new(mysqldriver.MySQLError)
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1205: // lock wait timeout
			return true
		case 1213: // deadlock, safe to retry whole unit of work
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	return false
}
