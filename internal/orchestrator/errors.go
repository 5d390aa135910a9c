package orchestrator

import "errors"

// errInternalPanic is returned when a recovered panic carries a non-error
// value; Run always wraps it as the fatal stage event's payload.
var errInternalPanic = errors.New("internal: unrecoverable orchestrator failure")
