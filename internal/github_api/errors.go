package githubapi

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceAbsent is returned for 404 responses. Only the tree fetch
	// treats it as a skip; everywhere else it is fatal.
	ErrResourceAbsent = errors.New("resource does not exist")

	errNoArray = errors.New("no JSON array in response")
)

// AuthenticationError is returned for 401 responses.
type AuthenticationError struct {
	URL string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("unauthorized request to %s, please ensure a valid API token is passed in the configuration", e.URL)
}

// TransportError covers every other non-200 status and network failures
// (StatusCode 0).
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("HTTP request %s %s failed: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP request %s %s returned code %d", e.Method, e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means a response did not match the expected schema.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
