// Package httputil provides the transport helpers used by the chain client.
//
// # Overview
//
//   - [Retry]: retry with exponential backoff for errors marked [Retryable]
//   - [NewClient]: an *http.Client with a timeout and a User-Agent header,
//     handed to the JSON-RPC dialer
//
// # Retry
//
// Only errors wrapped with [Retryable] are retried, so callers decide which
// failures are transient:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    out, err := caller.CallContract(ctx, msg, nil)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Defaults used by [RetryWithBackoff]: 3 attempts, 1 second initial delay,
// doubling after each failure.
package httputil
