package moderngov

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSite     = errors.New("invalid site url")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// ConfigError is returned when the client cannot be configured from what it
// was given, currently only a site that does not resolve to a usable url.
type ConfigError struct {
	Site string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("moderngov: invalid site %q: %v", e.Site, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidSite, e.Err}
}

// TransportError means the request never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("moderngov: request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a response with a status other than 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("moderngov: request %s: unexpected status %d", e.URL, e.StatusCode)
}

type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("moderngov: decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ShapeError is returned when a response decoded fine but lacks the path a
// wrapper expects to find.
type ShapeError struct {
	Endpoint Endpoint
	Path     []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf(
		"moderngov: %s: missing %s in response",
		e.Endpoint, strings.Join(e.Path, "/"),
	)
}

func (e *ShapeError) Unwrap() error {
	return ErrUnexpectedShape
}
