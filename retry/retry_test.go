package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecoverableError(t *testing.T) {
	err := NewRecoverableError(errors.New("test error"))
	assert.True(t, IsRecoverable(err))
	assert.False(t, IsRecoverable(errors.New("test error")))
	assert.False(t, IsRecoverable(nil))
}

func TestNonRecoverableErrorWins(t *testing.T) {
	err := NewNonRecoverableError(errors.New("Google Chrome got an error: AppleEvent timed out. (-1712)"))
	assert.False(t, IsRecoverable(err))
}

func TestOsascriptHeuristics(t *testing.T) {
	assert.True(t, IsRecoverable(errors.New("execution error: Google Chrome got an error: AppleEvent timed out. (-1712)")))
	assert.True(t, IsRecoverable(errors.New("Google Chrome got an error: application is busy (-10)")))
	assert.True(t, IsRecoverable(errors.New("connection is invalid. (-609)")))
	assert.False(t, IsRecoverable(errors.New("syntax error: Expected end of line (-2741)")))
	assert.False(t, IsRecoverable(context.Canceled))
	assert.True(t, IsRecoverable(context.DeadlineExceeded))
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	count := 0
	err := Do(ctx, func() error {
		count++
		return NewRecoverableError(errors.New("test error"))
	}, WithMaxRetries(3), WithBaseWait(time.Millisecond*20))
	assert.Error(t, err)
	assert.Equal(t, "test error", err.Error())
	assert.Equal(t, 4, count)
}

func TestRetryZeroMaxRetries(t *testing.T) {
	ctx := context.Background()
	count := 0
	err := Do(ctx, func() error {
		count++
		return NewRecoverableError(errors.New("test error"))
	}, WithMaxRetries(0), WithBaseWait(time.Millisecond*20))
	assert.Error(t, err)
	assert.Equal(t, "test error", err.Error())
	assert.Equal(t, 1, count) // Should still try once even with 0 retries
}

func TestRetryStopsOnSuccess(t *testing.T) {
	ctx := context.Background()
	count := 0
	err := Do(ctx, func() error {
		count++
		if count < 3 {
			return NewRecoverableError(errors.New("not yet"))
		}
		return nil
	}, WithMaxRetries(5), WithBaseWait(time.Millisecond))
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRetryStopsOnNonRecoverable(t *testing.T) {
	ctx := context.Background()
	count := 0
	err := Do(ctx, func() error {
		count++
		return errors.New("syntax error")
	}, WithMaxRetries(5), WithBaseWait(time.Millisecond))
	assert.Error(t, err)
	assert.Equal(t, 1, count)
}
