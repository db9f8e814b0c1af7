package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts uint64) Config {
	return Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	var attempts int

	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		attempts++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	var (
		attempts int
		delays   []time.Duration
	)

	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return driver.ErrBadConn
		}
		return nil
	}, func(_ error, delay time.Duration, _ int) {
		delays = append(delays, delay)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	// no jitter, so delays double exactly
	require.Len(t, delays, 2)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
}

func TestDoDelayCappedAtMax(t *testing.T) {
	var delays []time.Duration

	err := Do(context.Background(), Config{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}, func(_ context.Context) error {
		return driver.ErrBadConn
	}, func(_ error, delay time.Duration, _ int) {
		delays = append(delays, delay)
	})

	require.Error(t, err)
	require.Len(t, delays, 3)
	assert.Equal(t, time.Millisecond, delays[0])
	assert.Equal(t, 2*time.Millisecond, delays[1])
	assert.Equal(t, 2*time.Millisecond, delays[2])
}

func TestDoPermanentFailsFast(t *testing.T) {
	var (
		attempts int
		boom     = errors.New("duplicate entry")
	)

	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		attempts++
		return boom
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
}

func TestDoExhaustsAttempts(t *testing.T) {
	var attempts int

	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		attempts++
		return driver.ErrBadConn
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, driver.ErrBadConn)
}

func TestDoContextCanceledNotRetried(t *testing.T) {
	var attempts int

	err := Do(context.Background(), fastConfig(3), func(_ context.Context) error {
		attempts++
		return fmt.Errorf("query: %w", context.DeadlineExceeded)
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoZeroConfigUsesDefault(t *testing.T) {
	var attempts int

	err := Do(context.Background(), Config{}, func(_ context.Context) error {
		attempts++
		return errors.New("permanent")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{
			name:      "nil",
			err:       nil,
			transient: false,
		},
		{
			name:      "bad conn",
			err:       driver.ErrBadConn,
			transient: true,
		},
		{
			name:      "invalid conn",
			err:       mysqldriver.ErrInvalidConn,
			transient: true,
		},
		{
			name:      "wrapped bad conn",
			err:       fmt.Errorf("upsert lead: %w", driver.ErrBadConn),
			transient: true,
		},
		{
			name:      "lock wait timeout",
			err:       &mysqldriver.MySQLError{Number: 1205},
			transient: true,
		},
		{
			name:      "deadlock",
			err:       &mysqldriver.MySQLError{Number: 1213},
			transient: true,
		},
		{
			name:      "duplicate entry",
			err:       &mysqldriver.MySQLError{Number: 1062},
			transient: false,
		},
		{
			name:      "net error",
			err:       &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			transient: true,
		},
		{
			name:      "conn reset",
			err:       syscall.ECONNRESET,
			transient: true,
		},
		{
			name:      "context canceled",
			err:       context.Canceled,
			transient: false,
		},
		{
			name:      "deadline exceeded",
			err:       context.DeadlineExceeded,
			transient: false,
		},
		{
			name:      "plain error",
			err:       errors.New("boom"),
			transient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
		})
	}
}
