package feed

import "errors"

var (
	// ErrInvalidInput marks requests rejected before the store is queried.
	ErrInvalidInput = errors.New("invalid feed request")
	// ErrStoreUnavailable marks failed or timed out store queries. Callers may retry.
	ErrStoreUnavailable = errors.New("post store unavailable")
)
