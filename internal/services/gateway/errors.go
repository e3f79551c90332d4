package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for gateway operations
var (
	ErrTransport = errors.New("gateway: transport failure")
	ErrStatus    = errors.New("gateway: non-2xx response")
	ErrNotFound  = errors.New("gateway: not found")
	ErrDecode    = errors.New("gateway: malformed response body")
)

// Error wraps an underlying error with operation context
type Error struct {
	Gateway string
	Op      string
	Status  int    // HTTP status, zero when no response was received
	Body    string // Response body for non-2xx answers
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s [%d]: %v", e.Gateway, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the request may succeed
func (e *Error) Temporary() bool {
	if errors.Is(e.Err, ErrTransport) {
		return true
	}
	return e.Status >= 500
}

func wrapError(gateway, op string, status int, body string, err error) error {
	return &Error{
		Gateway: gateway,
		Op:      op,
		Status:  status,
		Body:    body,
		Err:     err,
	}
}

// UserMessage extracts a short message for display: the "message" field of a
// JSON error body, or a short plain-text body. Anything else gets fallback.
func UserMessage(err error, fallback string) string {
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Body == "" || len(gerr.Body) > maxMessageLen {
		return fallback
	}

	switch gerr.Body[0] {
	case '{':
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal([]byte(gerr.Body), &payload) == nil && payload.Message != "" {
			return payload.Message
		}
		return fallback
	case '<', '[':
		return fallback
	default:
		return gerr.Body
	}
}

const maxMessageLen = 200
