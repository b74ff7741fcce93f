package remote

import "errors"

var (
	// ErrUnavailable indicates the project service could not be reached.
	ErrUnavailable = errors.New("project service unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("project service request timed out")

	// ErrRejected indicates the service answered with a non-success status.
	ErrRejected = errors.New("project service rejected request")

	// ErrNotFound indicates the addressed project does not exist remotely.
	ErrNotFound = errors.New("project not found on service")
)
