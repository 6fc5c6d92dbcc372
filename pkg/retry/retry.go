// Package retry runs short optimistic write loops that re-execute a unit of
// work when the database reports a transient conflict.
package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/Kai120789/marketplace/pkg/db"
)

const (
	DefaultAttempts = 3
	defaultBase     = 10 * time.Millisecond
	defaultCap      = 250 * time.Millisecond
)

// Options tunes a retry loop. Zero values fall back to sane defaults.
type Options struct {
	// Attempts is the total number of executions, including the first.
	Attempts int
	Base     time.Duration
	// Retryable classifies errors worth another attempt. Defaults to db.IsTransient.
	Retryable func(error) bool
	// OnRetry fires before every re-execution with the 1-based attempt that failed.
	OnRetry func(attempt int, err error)
}

// Do executes fn until it succeeds, returns a non-retryable error, or the
// attempt budget runs out. The last error is returned unchanged.
func Do(ctx context.Context, opts Options, fn func(ctx context.Context) error) error {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	base := opts.Base
	if base <= 0 {
		base = defaultBase
	}
	retryable := opts.Retryable
	if retryable == nil {
		retryable = db.IsTransient
	}

	backoff := goretry.NewExponential(base)
	backoff = goretry.WithCappedDuration(defaultCap, backoff)
	backoff = goretry.WithJitterPercent(20, backoff)
	backoff = goretry.WithMaxRetries(uint64(attempts-1), backoff)

	attempt := 0
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt < attempts && opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}
		return goretry.RetryableError(err)
	})
}
