package dispatch

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the callback endpoint answers with a non-2xx status.
type StatusError struct{ StatusCode int }

func (e *StatusError) Error() string {
	return fmt.Sprintf("callback returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
