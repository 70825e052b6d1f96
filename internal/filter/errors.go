package filter

import "errors"

// ErrNotFound is returned when a rule mutation targets an id with no row.
var ErrNotFound = errors.New("filter rule not found")
