package domain

import "errors"

var (
	// ErrSessionRejected is returned by the gateway when a session request
	// is refused outright.
	ErrSessionRejected = errors.New("session request rejected")

	// ErrSessionThrottled is returned by the gateway when the host is
	// rate-limiting session requests. Not retried: the next update attempts
	// a fresh request.
	ErrSessionThrottled = errors.New("session request throttled")

	// ErrImplausibleReading marks a reading outside physiological bounds.
	ErrImplausibleReading = errors.New("implausible heart rate reading")
)
