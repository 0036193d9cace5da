package transport

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zeebo/errs"
)

var (
	// ErrTransient classifies failures worth retrying: connection errors,
	// timeouts and exceeding the redirect limit.
	ErrTransient = errs.Class("transient transport error")
	// ErrFilesystem classifies failures preparing or writing the destination.
	ErrFilesystem = errs.Class("filesystem error")
	// ErrDecode classifies a corrupt compressed stream.
	ErrDecode = errs.Class("decode error")

	// ErrRedirectLimit is returned when a response redirects more often
	// than the engine allows.
	ErrRedirectLimit = errors.New("stopped after too many redirects")
	// ErrTimeout is the cause of a transfer that exceeded its time budget.
	ErrTimeout = errors.New("transfer timed out")
)

// StatusError reports a response whose status code was not 200.
type StatusError struct {
	URL        string // URL of the final response, after redirects
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: unexpected status code: %d %s",
		e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCode returns the HTTP status carried by err, or 0 if err did not
// come from a completed HTTP exchange.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is an HTTP 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsTransient reports whether err belongs to the retryable class.
func IsTransient(err error) bool {
	return ErrTransient.Has(err)
}
