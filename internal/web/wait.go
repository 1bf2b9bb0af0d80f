package web

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultElementWait is the wait used by Elements, ElementText and
// WaitAndFindElement when the caller passes none.
const DefaultElementWait = 5 * time.Second

// waitOr returns the first of waits, or def.
func waitOr(def time.Duration, waits []time.Duration) time.Duration {
	if len(waits) > 0 && waits[0] > 0 {
		return waits[0]
	}
	return def
}

// poll calls cond every interval until it reports true, it returns an
// error, or d elapses. Condition errors other than ErrNoSuchElement stop
// the wait.
func poll(ctx context.Context, d, interval time.Duration, what string, cond func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond(ctx)
		switch {
		case err == nil && ok:
			return nil
		case err != nil && ctx.Err() == nil && !isRetryable(err):
			return err
		case err != nil:
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w after %s: %s: %v", ErrTimeout, d, what, lastErr)
			}
			return fmt.Errorf("%w after %s: %s", ErrTimeout, d, what)
		case <-ticker.C:
		}
	}
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}
