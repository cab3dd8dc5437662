package apiclient

import (
	"context"

	"github.com/cenkalti/backoff/v5"
	"github.com/tyemirov/storefront/internal/telemetry"
	"go.uber.org/zap"
)

// retryUnlessUnauthorized runs operation once and retries it up to retries
// more times. A 401 or 403 ends the loop immediately.
func retryUnlessUnauthorized[T any](ctx context.Context, client *Client, retries uint, operation func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		if attempt > 1 {
			client.metrics.Increment(telemetry.EventAPIRequestRetry)
			client.logger.Debug("retrying backend request", zap.Int("attempt", attempt))
		}
		result, err := operation()
		if err != nil && IsUnauthorized(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}, backoff.WithBackOff(client.newBackOff()), backoff.WithMaxTries(retries+1))
}
