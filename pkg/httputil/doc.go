// Package httputil provides HTTP helpers shared by the vault client.
//
// [Retry] implements exponential backoff over operations that classify their
// failures: transient errors (timeouts, 5xx) are wrapped in [RetryableError]
// and retried, everything else returns immediately.
//
// [DoJSON], [GetJSON], and [PostJSON] perform requests against the vault API
// and apply that classification automatically, so a typical client call is:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return httputil.GetJSON(ctx, client, url, &out)
//	})
package httputil
