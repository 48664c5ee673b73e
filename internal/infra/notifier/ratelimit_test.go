package notifier

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("TC-1: should serve burst capacity immediately", func(t *testing.T) {
		limiter := NewRateLimiter(2.0, 5)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 5; i++ {
			if err := limiter.Allow(ctx); err != nil {
				t.Fatalf("burst request %d failed: %v", i+1, err)
			}
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("burst took %v, expected near-immediate", elapsed)
		}
	})

	t.Run("TC-2: should fail once the deadline cannot cover the wait", func(t *testing.T) {
		limiter := NewRateLimiter(1.0, 1)
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatalf("first request failed: %v", err)
		}

		// Token refills after 1s but the context only allows 100ms.
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if err := limiter.Allow(ctx); err == nil {
			t.Error("expected an error when the wait exceeds the deadline")
		}
	})

	t.Run("TC-3: should unblock on context cancellation", func(t *testing.T) {
		limiter := NewRateLimiter(1.0, 1)
		if err := limiter.Allow(context.Background()); err != nil {
			t.Fatalf("first request failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		errChan := make(chan error, 1)
		go func() {
			errChan <- limiter.Allow(ctx)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errChan:
			if err == nil {
				t.Error("expected an error after cancellation")
			}
		case <-time.After(time.Second):
			t.Fatal("Allow did not return after cancellation")
		}
	})
}
