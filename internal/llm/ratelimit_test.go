package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("bucket starts full", func(t *testing.T) {
		rl := newRateLimiter(10)
		defer rl.Close()

		assert.Equal(t, 10, rl.available())
		for i := 0; i < 10; i++ {
			require.NoError(t, rl.wait(context.Background()))
		}
		assert.Equal(t, 0, rl.available())
	})

	t.Run("waits for refill", func(t *testing.T) {
		// 600 per minute refills a token every 100ms.
		rl := newRateLimiter(600)
		defer rl.Close()

		for rl.tryAcquire() {
		}

		start := time.Now()
		done := make(chan error, 1)
		go func() { done <- rl.wait(context.Background()) }()

		select {
		case err := <-done:
			require.NoError(t, err)
			assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
		case <-time.After(5 * time.Second):
			t.Fatal("rate limiter never refilled")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- rl.wait(ctx) }()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("tryAcquire", func(t *testing.T) {
		rl := newRateLimiter(5)
		defer rl.Close()

		for i := 0; i < 5; i++ {
			assert.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire())
	})

	t.Run("default rate limit", func(t *testing.T) {
		rl := newRateLimiter(0)
		defer rl.Close()

		assert.Equal(t, 60, rl.available())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		rl := newRateLimiter(5)
		rl.Close()
		assert.NotPanics(t, rl.Close)

		err := rl.wait(context.Background())
		assert.ErrorIs(t, err, common.ErrAIUnavailable)
		assert.False(t, rl.tryAcquire())
	})

	t.Run("refills from elapsed time", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		rl := newRateLimiter(60)
		rl.now = func() time.Time { return now }
		rl.last = now
		defer rl.Close()

		for rl.tryAcquire() {
		}
		assert.Equal(t, 0, rl.available())

		now = now.Add(2500 * time.Millisecond)
		assert.Equal(t, 2, rl.available())

		now = now.Add(time.Hour)
		assert.Equal(t, 60, rl.available())
	})

	t.Run("concurrent access", func(t *testing.T) {
		rl := newRateLimiter(100)
		defer rl.Close()

		var acquired atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if rl.tryAcquire() {
						acquired.Add(1)
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(100), acquired.Load())
	})
}
