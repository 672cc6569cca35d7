package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrInvalidResponse means the model answered with something unusable:
// output that fails the schema, an empty reply, or one cut off at
// MaxTokens.
type ErrInvalidResponse struct {
	Content   json.RawMessage
	Truncated bool
	Err       error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Truncated {
		return "model response truncated at max tokens"
	}
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrUnavailable means no answer came back. Status is the HTTP status the
// provider replied with, or zero when the request never got one.
type ErrUnavailable struct {
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *ErrUnavailable) Error() string {
	switch {
	case e.Status == http.StatusTooManyRequests:
		return fmt.Sprintf("model provider rate limited: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("model provider returned %d: %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("model provider unreachable: %v", e.Err)
	}
	return "model provider unreachable"
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// Temporary reports whether repeating the request could succeed. Client
// errors other than timeouts and rate limits are final.
func (e *ErrUnavailable) Temporary() bool {
	switch {
	case e.Status == 0, e.Status >= 500:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	}
	return false
}

// unavailable wraps an SDK error carrying an HTTP status. header may be
// nil when the SDK does not expose the response.
func unavailable(status int, header http.Header, err error) error {
	e := &ErrUnavailable{Status: status, Err: err}
	if header != nil {
		if secs, perr := strconv.Atoi(header.Get("Retry-After")); perr == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}
