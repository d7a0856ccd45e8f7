package review

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates the API credential is missing.
	ErrConfiguration = errors.New("AI reviewer not configured")

	// ErrTransport indicates the request could not be delivered or timed out.
	ErrTransport = errors.New("AI reviewer unreachable")

	// ErrUpstream indicates the provider answered with a non-success status.
	ErrUpstream = errors.New("AI provider error")

	// ErrParse indicates the provider response could not be decoded.
	ErrParse = errors.New("AI response not understood")
)

// UpstreamError carries the status and body of a failed provider call.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (%d): %s", ErrUpstream, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
