package upstream

import "errors"

var (
	// ErrNoAPIKey means no upstream credential is configured; callers fall
	// back to synthetic data without ever dialing out.
	ErrNoAPIKey = errors.New("upstream API key not configured")

	// ErrUnavailable covers any failed upstream call: transport error,
	// non-2xx status, timeout, or malformed payload.
	ErrUnavailable = errors.New("upstream provider unavailable")

	// ErrRateLimited is surfaced when the provider returns 429 after all
	// retries are spent.
	ErrRateLimited = errors.New("rate limited by upstream provider")
)
