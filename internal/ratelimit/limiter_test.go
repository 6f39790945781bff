package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_New(t *testing.T) {
	throttle := New(275 * time.Millisecond)

	require.NotNil(t, throttle)
	assert.Equal(t, 275*time.Millisecond, throttle.Delay())
}

func TestThrottle_FirstRequestWaits(t *testing.T) {
	throttle := New(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestThrottle_SpacesRequests(t *testing.T) {
	throttle := New(30 * time.Millisecond)

	start := time.Now()
	for range 3 {
		require.NoError(t, throttle.Wait(context.Background()))
	}

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	snapshot := throttle.Metrics()
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(3), snapshot.AllowedRequests)
	assert.Equal(t, int64(0), snapshot.DeniedRequests)
}

func TestThrottle_ZeroDelay(t *testing.T) {
	throttle := New(0)

	start := time.Now()
	for range 10 {
		require.NoError(t, throttle.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestThrottle_ContextCancellation(t *testing.T) {
	throttle := New(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := throttle.Wait(ctx)
	assert.Error(t, err)
	assert.Equal(t, int64(1), throttle.Metrics().DeniedRequests)
}

func TestThrottle_ZeroDelayCancelled(t *testing.T) {
	throttle := New(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, throttle.Wait(ctx), context.Canceled)
}
