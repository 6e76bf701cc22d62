package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/deductible/internal/common"
)

// rateLimiter is a token bucket holding one minute of requests. Tokens are
// refilled lazily from the elapsed time, so an idle limiter costs nothing.
type rateLimiter struct {
	now      func() time.Time
	last     time.Time
	interval time.Duration
	tokens   float64
	capacity float64
	mu       sync.Mutex
	closed   bool
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &rateLimiter{
		now:      time.Now,
		last:     time.Now(),
		interval: time.Minute / time.Duration(requestsPerMinute),
		tokens:   float64(requestsPerMinute),
		capacity: float64(requestsPerMinute),
	}
}

// wait blocks until a token is available, the limiter is closed, or ctx is done.
func (rl *rateLimiter) wait(ctx context.Context) error {
	for {
		delay, err := rl.reserve()
		if err != nil {
			return err
		}
		if delay == 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// reserve takes a token if one is available, otherwise it reports how long
// until the next one.
func (rl *rateLimiter) reserve() (time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.closed {
		return 0, fmt.Errorf("%w: rate limiter closed", common.ErrAIUnavailable)
	}
	rl.refillLocked()
	if rl.tokens >= 1 {
		rl.tokens--
		return 0, nil
	}
	return time.Duration((1 - rl.tokens) * float64(rl.interval)), nil
}

func (rl *rateLimiter) tryAcquire() bool {
	delay, err := rl.reserve()
	return err == nil && delay == 0
}

func (rl *rateLimiter) available() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return int(rl.tokens)
}

func (rl *rateLimiter) refillLocked() {
	now := rl.now()
	elapsed := now.Sub(rl.last)
	if elapsed <= 0 {
		return
	}
	rl.last = now
	rl.tokens = min(rl.capacity, rl.tokens+float64(elapsed)/float64(rl.interval))
}

// Close makes every later wait fail. It is safe to call more than once.
func (rl *rateLimiter) Close() {
	rl.mu.Lock()
	rl.closed = true
	rl.mu.Unlock()
}
