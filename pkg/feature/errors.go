package feature

import "errors"

var (
	// ErrFlagNotFound indicates that the requested feature flag does not exist.
	ErrFlagNotFound = errors.New("feature flag not found")

	// ErrInvalidFlag indicates that the provided flag is nil or unnamed.
	ErrInvalidFlag = errors.New("invalid feature flag parameters")
)
