package api

import "errors"

var (
	ErrMissingIdentity = errors.New("missing X-User-ID header")
	ErrInvalidIdentity = errors.New("X-User-ID is not a valid uuid")
	ErrInvalidID       = errors.New("invalid notification id")
	ErrInvalidBody     = errors.New("invalid request body")
	ErrInvalidPageSize = errors.New("invalid page size")
)
