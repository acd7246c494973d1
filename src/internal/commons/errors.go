package commons

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrChecksFailed     = errors.New("one or more connection checks failed")
	ErrPayeeMismatch    = errors.New("payee verification did not match")
	ErrTokenUnavailable = errors.New("no access token available")
)

// APIError is returned when the server answered with a non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// NotFound reports whether the server answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// TransportError is returned when a request was sent but no response came back.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request gave up waiting.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// SetupError is a local failure before anything was sent: unreadable
// certificate, bad URL, unencodable payload.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Describe renders err as one human-readable line that tells the three
// failure kinds apart.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = "<empty body>"
		}
		return fmt.Sprintf("API error: status %d from %s %s: %s", apiErr.StatusCode, apiErr.Method, apiErr.Path, body)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Timeout() {
			return fmt.Sprintf("no response from %s %s (timed out)", transportErr.Method, transportErr.Path)
		}
		return fmt.Sprintf("no response from %s %s: %v", transportErr.Method, transportErr.Path, transportErr.Err)
	}

	var setupErr *SetupError
	if errors.As(err, &setupErr) {
		return fmt.Sprintf("setup error (%s): %v", setupErr.Op, setupErr.Err)
	}

	return err.Error()
}
