package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrPollTimeout is returned by pollUntil when the condition was not met
// within its timeout.
var ErrPollTimeout = errors.New("poll timed out")

var errNotReady = errors.New("condition not met")

// pollUntil calls check every interval until it reports ok, fails, or the
// timeout elapses. Cancellation of ctx itself is returned as ctx.Err(), not
// as ErrPollTimeout.
func pollUntil[T any](
	ctx context.Context,
	interval, timeout time.Duration,
	check func(ctx context.Context) (T, bool, error),
) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var result T
	operation := func() error {
		value, ok, err := check(waitCtx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errNotReady
		}
		result = value
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx))
	switch {
	case err == nil:
		return result, nil
	case ctx.Err() != nil:
		return zero, ctx.Err()
	case waitCtx.Err() != nil:
		return zero, ErrPollTimeout
	default:
		return zero, err
	}
}
