package retry

import (
    "context"
    "errors"
    "fmt"
    "time"

    apierr "validator_payments_api/internal/errors"
)

type Operation func() error

// ExhaustedError is returned once every attempt has failed. It unwraps to
// the last error so callers can still classify it.
type ExhaustedError struct {
    Attempts int
    Last     error
}

func (e *ExhaustedError) Error() string {
    return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do runs op up to attempts times, sleeping baseDelay*attemptNumber between
// tries. A not-found result is terminal: it is returned as-is without
// consuming any of the retry budget, since it marks a resource that will
// never appear (e.g. a slot with no proposed block).
func Do(ctx context.Context, attempts int, baseDelay time.Duration, op Operation) error {
    var lastErr error

    for i := 1; i <= attempts; i++ {
        err := op()
        if err == nil {
            return nil
        }
        if errors.Is(err, apierr.ErrNotFound) {
            return err
        }
        lastErr = err

        if ctx.Err() != nil {
            return ctx.Err()
        }
        if i < attempts {
            time.Sleep(baseDelay * time.Duration(i))
        }
    }
    return &ExhaustedError{Attempts: attempts, Last: lastErr}
}
