package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches a *NotFoundError.
	ErrNotFound = errors.New("catalog: element set not found")
	// ErrTransport matches a *TransportError.
	ErrTransport = errors.New("catalog: transport failure")

	// ErrMalformed and ErrChecksum are wrapped by *ParseError.
	ErrMalformed = errors.New("malformed element set")
	ErrChecksum  = errors.New("checksum mismatch")

	// ErrTooLarge is returned when a catalog document is cut off by the
	// fetcher's body limit.
	ErrTooLarge = errors.New("catalog document too large")
)

// NotFoundError reports that no record in a catalog group carries the
// requested name.
type NotFoundError struct {
	Group string
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: no element set named %q in group %q", e.Name, e.Group)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransportError reports a failed download. StatusCode is zero when no
// response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog: GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog: GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ParseError locates a decoding failure in catalog text. Line is 1-based.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
