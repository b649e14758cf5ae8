package models

import "errors"

// Error taxonomy for pricing and history failures. A failure pricing a
// single position never aborts the snapshot; positions are returned with
// markers instead of being dropped.
var (
	// ErrQuoteUnavailable means no current or stale quote exists for a ticker.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrRateLimited means an external source is throttling. Callers fall
	// back to stale cached quotes rather than surfacing this to the user.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrFxRateUnavailable means currency conversion failed. The position
	// is returned in its native currency with a flag rather than dropped.
	ErrFxRateUnavailable = errors.New("fx rate unavailable")

	// ErrInvalidWindow means a requested history window is not satisfiable.
	ErrInvalidWindow = errors.New("invalid history window")
)
