package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxRetries = 4

func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}

// WithRetry runs a platform call with bounded exponential backoff.
// Exhausting the retries returns the last error; committed store state is
// left for the next scheduler tick to pick up.
func WithRetry[T any](ctx context.Context, logger *slog.Logger, op string, fn func() (T, error)) (T, error) {
	return backoff.RetryNotifyWithData(fn, newBackOff(ctx), func(err error, next time.Duration) {
		logger.WarnContext(ctx, "platform call failed, retrying",
			slog.String("operation", op),
			slog.Duration("backoff", next),
			slog.Any("error", err),
		)
	})
}

// RetryVoid is WithRetry for calls without a return value.
func RetryVoid(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	_, err := WithRetry(ctx, logger, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
