package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyResponse is returned when the backend answered 200 without any text.
var ErrEmptyResponse = errors.New("llm returned no content")

// StatusError carries a non-2xx answer from the backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// IsTimeout reports whether err came from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
