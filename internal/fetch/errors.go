package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNullItem is returned when the API answers an item request with
	// a JSON null, meaning the id does not exist.
	ErrNullItem = errors.New("item does not exist")

	// ErrUnexpectedType is returned when an item decodes but is not of the
	// requested kind.
	ErrUnexpectedType = errors.New("unexpected item type")

	// ErrTooLarge is returned when a response body exceeds maxBodyBytes.
	ErrTooLarge = errors.New("response too large")
)

// NetworkError is a connectivity failure: transport errors, timeouts, a
// cancelled rate-limiter wait, or a 429/5xx answer. Retrying later may help.
type NetworkError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: network error: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError is a malformed or unexpected answer from the API.
type ProtocolError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("%s: protocol error: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: protocol error: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is, or wraps, a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// classifyStatus maps a non-OK status to an error kind.
// 429 and 5xx are network errors; any other status is a protocol error.
func classifyStatus(op string, code int) error {
	err := errors.New(http.StatusText(code))
	switch {
	case code == http.StatusTooManyRequests, code >= 500:
		return &NetworkError{Op: op, StatusCode: code, Err: err}
	default:
		return &ProtocolError{Op: op, StatusCode: code, Err: err}
	}
}
