package errors

import "errors"

// This package defines the sentinel errors shared by the service and API layers.
// Services wrap them with fmt.Errorf("%w: ...") and the API layer maps them to
// HTTP status codes with errors.Is.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that a request body is malformed or failed
	// validation. Mapped to 400 Bad Request, except on the chat endpoint whose
	// contract reports every pre-stream failure as 500.
	ErrValidation = errors.New("validation failed")

	// ErrPermission signifies that the action is not allowed right now, for
	// example a chat request outside the gate hour. Mapped to 403 Forbidden.
	ErrPermission = errors.New("permission denied")

	// ErrUpstream signifies that the language model provider failed or
	// returned something unusable. Mapped to 502 Bad Gateway.
	ErrUpstream = errors.New("upstream provider failed")

	// ErrInternal signifies an unexpected error on the server.
	// Mapped to 500 Internal Server Error.
	ErrInternal = errors.New("internal server error")
)
