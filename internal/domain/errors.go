package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrInFlight     = errors.New("request already in flight")
	ErrRemote       = errors.New("remote call failed")
)

// RemoteError describes a failed call to the central system or training API.
// Message is the remote payload's message field when one was returned.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemote, e.Err}
	}
	return []error{ErrRemote}
}

// MessageOr returns the user-facing message carried by err, or fallback when
// err carries none.
func MessageOr(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	return fallback
}
