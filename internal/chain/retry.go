package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/rpc"
)

// StatusError is a non-200 response from the pair statistics API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// retryableStatus reports whether an HTTP status is worth another attempt.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// isPermanent classifies errors that a retry cannot fix: client-side HTTP statuses,
// JSON-RPC error objects returned by the node, and cancellation.
func isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !retryableStatus(statusErr.StatusCode)
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return !retryableStatus(httpErr.StatusCode)
	}
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

// withRetry runs fn with exponential backoff, at most maxRetries extra times.
// Errors wrapped with backoff.Permanent or classified by isPermanent stop at once.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx)

	return backoff.Retry(func() error {
		err := fn(ctx)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, retry)
}
