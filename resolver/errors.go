package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLookupPanicked marks a lookup that panicked instead of returning
var ErrLookupPanicked = errors.New("lookup panicked")

// LookupError is recorded in State.Err when the lookup function fails
type LookupError struct {
	Query string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("search for %q failed: %s", e.Query, describe(e.Err))
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// describe normalizes an error into a single readable line
func describe(err error) string {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		err = lookupErr.Err
	}
	if err == nil {
		return "lookup failed"
	}

	msg := strings.Join(strings.Fields(err.Error()), " ")
	if msg == "" {
		return "lookup failed"
	}
	return msg
}
