package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		cause := errors.New("always")
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return cause
		}, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 3, calls)
	})

	t.Run("non retryable stops immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("auth"), Retryable: false}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errors.New("x") }, RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("quota exhausted")
	fetchErr := &FetchError{SpreadsheetID: "sheet", Range: "Sheet1", Err: cause}
	assert.ErrorIs(t, fetchErr, ErrFetch)
	assert.ErrorIs(t, fetchErr, cause)
	assert.Contains(t, fetchErr.Error(), "sheet!Sheet1")

	storeErr := &StorageError{Line: 4, Err: cause}
	assert.ErrorIs(t, storeErr, ErrStorage)
	assert.Contains(t, storeErr.Error(), "row 4")
	assert.Contains(t, (&StorageError{Err: cause}).Error(), "store records")

	assert.True(t, IsRetryable(&RetryableError{Err: cause, Retryable: true}))
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.False(t, IsRetryable(cause))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Info("hello", "line", 3)
	assert.Contains(t, buf.String(), `"line":3`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSetupLogger_WritesDebugFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	logger, closer, err := SetupLogger(slog.LevelDebug, "console", path)
	require.NoError(t, err)
	logger.Debug("row skipped", "line", 7)
	require.NoError(t, closer.Close())

	assert.FileExists(t, path)
}
