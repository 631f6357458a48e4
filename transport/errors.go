package transport

import (
	"errors"
	"fmt"
)

// HTTPError is the transport's raw signal for a terminal failure status
// (>= 400). It carries the full parsed response and no service semantics;
// service clients translate the embedded server error payload through
// their own code tables.
type HTTPError struct {
	Response *Response
}

// NewHTTPError wraps a completed failure response.
func NewHTTPError(resp *Response) *HTTPError {
	return &HTTPError{Response: resp}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error status: %d; reply: %s", e.Response.Status, string(e.Response.Body))
}

// IsHTTPStatus reports whether err is an *HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Response.Status == status
	}
	return false
}
