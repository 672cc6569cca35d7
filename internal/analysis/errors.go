package analysis

import (
	"errors"
	"fmt"
)

// TransportError means the service could not be reached or its reply
// could not be read: connection refused, timeouts, truncated bodies.
type TransportError struct {
	Op  Op
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a structured failure reported by the service itself.
type RemoteError struct {
	Op         Op
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: remote error (status %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: remote error (status %d): %s", e.Op, e.StatusCode, e.Message)
}

// ErrInvalidResponse means the service answered successfully but the body
// did not match the contract.
type ErrInvalidResponse struct {
	Op   Op
	Body []byte
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

const (
	msgUnexpected      = "An unexpected error occurred"
	msgTryAgain        = "An unexpected error occurred. Please try again."
	msgInvalidResponse = "The analysis service returned an invalid response."
)

// UserMessage renders err as the single line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return "Error: " + msgInvalidResponse
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		if remote.Message == "" {
			return "Error: " + msgUnexpected
		}
		return "Error: " + remote.Message
	}

	return msgTryAgain
}
