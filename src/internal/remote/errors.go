package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteError describes a failed management API call.
type RemoteError struct {
	Op         string // e.g. "POST /organizations"
	StatusCode int    // 0 for transport failures
	Message    string
	Cause      error
}

func (e *RemoteError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(": %d %s", e.StatusCode, http.StatusText(e.StatusCode)))
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Class buckets the failure: "transport", "2xx", "3xx", "4xx" or "5xx".
func (e *RemoteError) Class() string {
	if e.StatusCode == 0 {
		return "transport"
	}
	return fmt.Sprintf("%dxx", e.StatusCode/100)
}

// IsUnrecoverable reports whether err means no further call can succeed
// (bad credentials or missing permissions).
func IsUnrecoverable(err error) bool {
	var re *RemoteError
	if !errors.As(err, &re) {
		return false
	}
	return re.StatusCode == http.StatusUnauthorized || re.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
