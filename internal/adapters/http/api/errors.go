package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")

	// ErrUnavailable marks dependencies that cannot serve yet, such as a
	// service that has not been started.
	ErrUnavailable = errors.New("service unavailable")
)
