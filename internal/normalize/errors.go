package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedFormat is matched by every *FormatError.
var ErrUnrecognizedFormat = errors.New("unrecognized response format")

// FormatError reports a payload that matched no known shape. Received holds
// the offending payload so backend drift can be diagnosed from logs.
type FormatError struct {
	Domain   string
	Expected []string
	Reason   string
	Received string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unsupported %s response format", e.Domain)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected { %s, ... }", strings.Join(e.Expected, ", "))
	}
	fmt.Fprintf(&b, "; received: %s", e.Received)
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return ErrUnrecognizedFormat
}

func formatError(domain, reason string, expected []string, received any) *FormatError {
	return &FormatError{
		Domain:   domain,
		Expected: expected,
		Reason:   reason,
		Received: compact(received),
	}
}
