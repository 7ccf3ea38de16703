package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apierr "validator_payments_api/internal/errors"
	"validator_payments_api/internal/retry"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NotFoundIsTerminal(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return fmt.Errorf("slot 42: %w", apierr.ErrNotFound)
	})
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("expected not-found to pass through, got %v", err)
	}
	if calls != 1 {
		t.Errorf("not-found must not consume retry budget, got %d calls", calls)
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("not-found must not surface as exhaustion")
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	last := errors.New("still broken")
	err := retry.Do(context.Background(), 4, time.Millisecond, func() error {
		calls++
		return last
	})
	if calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", calls)
	}
	var exhausted *retry.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("expected 4 recorded attempts, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, last) {
		t.Error("exhaustion should unwrap to the last error")
	}
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, 5, time.Millisecond, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}
