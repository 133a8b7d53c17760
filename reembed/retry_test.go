package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingUntil(n int, attempts *int) func() error {
	return func() error {
		*attempts++
		if *attempts < n {
			return errors.New("temporary error")
		}
		return nil
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("first try", func(t *testing.T) {
		attempts := 0
		require.NoError(t, RetryWithBackoff(context.Background(), failingUntil(1, &attempts), 3, time.Millisecond))
		assert.Equal(t, 1, attempts)
	})

	t.Run("eventual success", func(t *testing.T) {
		attempts := 0
		require.NoError(t, RetryWithBackoff(context.Background(), failingUntil(3, &attempts), 5, time.Millisecond))
		assert.Equal(t, 3, attempts)
	})

	t.Run("all attempts fail", func(t *testing.T) {
		attempts := 0
		expected := errors.New("persistent error")
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return expected
		}, 3, time.Millisecond)
		assert.Equal(t, expected, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		for _, maxAttempts := range []int{0, -1} {
			attempts := 0
			err := RetryWithBackoff(context.Background(), failingUntil(1, &attempts), maxAttempts, time.Millisecond)
			assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
			assert.Zero(t, attempts)
		}
	})
}

func TestRetryWithBackoff_Permanent(t *testing.T) {
	attempts := 0
	cause := errors.New("bad request")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return Permanent(cause)
	}, 5, time.Millisecond)

	assert.Equal(t, cause, err, "permanent wrapper should be removed")
	assert.Equal(t, 1, attempts)
	assert.NoError(t, Permanent(nil))
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, 5*time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_DelayGrows(t *testing.T) {
	attempts := 0
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		attempts++
		if attempts < 4 {
			return errors.New("error")
		}
		return nil
	}, 5, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	first := stamps[1].Sub(stamps[0])
	last := stamps[3].Sub(stamps[2])
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.GreaterOrEqual(t, last, 40*time.Millisecond)
}
