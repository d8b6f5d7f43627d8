package push

import "errors"

var (
	// ErrProvider is returned when the push gateway rejected or failed a send.
	ErrProvider = errors.New("push: provider error")

	ErrInvalidConfig      = errors.New("push: invalid configuration")
	ErrFailedToLoadConfig = errors.New("push: failed to load aws config")
)
