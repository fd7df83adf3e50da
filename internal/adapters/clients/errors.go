// Package clients provides the instrumented HTTP client used to reach the Bot API.
package clients

import "errors"

// Infrastructure failures of the client layer. Callers translate them to
// domain errors in the acl package.
var (
	// ErrCircuitOpen is returned without contacting the server while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once retries are exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
