package transport

import (
	"fmt"
	"net/http"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// StatusError is returned when the server answered with a non-2xx status.
// The full response is still available.
type StatusError struct {
	Response *domain.Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Response.StatusCode, e.Response.StatusText)
}

// NoResponseError is returned when a request was sent but no response arrived
// (timeouts, refused connections, DNS failures, truncated bodies).
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response received: %v", e.Err)
}

func (e *NoResponseError) Unwrap() error { return e.Err }

// SetupError is returned when a request could not be built or sent at all.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }

func (e *SetupError) Unwrap() error { return e.Err }

// statusText mirrors the reason phrase a client library would report.
func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("Status %d", code)
}
