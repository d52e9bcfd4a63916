package symbolworker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxFetchRetries and fetchRetryDelay implement the AST fetch retry
// contract: one initial attempt plus up to five retries, 100ms apart, before
// giving up and surfacing the last error.
const (
	maxFetchRetries = 5
	fetchRetryDelay = 100 * time.Millisecond
)

// fetchWithRetry wraps fetch in a constant backoff capped at
// maxFetchRetries retries after the first attempt. A context cancellation (preemption via
// Worker.Request or Dispose) aborts the retry loop immediately instead of
// waiting out the remaining delay.
func fetchWithRetry(ctx context.Context, fetch FetchFunc, uri string) (*Outline, error) {
	var result *Outline

	operation := func() error {
		o, err := fetch(ctx, uri)
		if err != nil {
			return err
		}
		result = o
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(fetchRetryDelay), maxFetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}
