package datasource

import (
	"errors"
	"fmt"
)

// StatusError is returned when the provider answers with a non-200 status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d) from %s", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("API error (status %d) from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a StatusError
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
