package actions

import (
	"errors"
	"fmt"
)

// ErrLookup marks failures of the underlying store reads.
var ErrLookup = errors.New("lookup failure")

// LookupError is returned when reading Table for Address failed. It aborts the whole request.
type LookupError struct {
	Address string
	Table   string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup failure: %s for %s: %v", e.Table, e.Address, e.Err)
}

func (e *LookupError) Unwrap() []error {
	return []error{ErrLookup, e.Err}
}
