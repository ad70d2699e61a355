package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Wait_UnderLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestRateLimiter_Wait_SleepsUntilNextWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 50*time.Millisecond)
	require.NoError(t, rl.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, rl.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRateLimiter_Wait_Canceled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, rl.count)
}

func TestNewRateLimiter_NonPositiveLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewRateLimiter(0, time.Second).limit)
}
