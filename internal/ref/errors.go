package ref

import (
	"fmt"
	"time"
)

// MalformedInputError is returned when a UI hierarchy document cannot be
// safely parsed, including documents rejected for suspected entity-expansion
// abuse. The underlying decoder error is preserved for diagnostics but never
// propagates raw.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed UI hierarchy: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed UI hierarchy: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// NoSnapshotError is returned when ref resolution is attempted before any
// snapshot exists for a device.
type NoSnapshotError struct {
	DeviceID string
}

func (e *NoSnapshotError) Error() string {
	return fmt.Sprintf("no snapshot for device %q: capture a snapshot first", e.DeviceID)
}

// StaleSnapshotError is returned when the current snapshot exceeds the
// allowed age. Age carries the actual snapshot age.
type StaleSnapshotError struct {
	Ref    string
	Age    time.Duration
	MaxAge time.Duration
}

func (e *StaleSnapshotError) Error() string {
	return fmt.Sprintf("stale ref %s: snapshot is %.1fs old (max %.1fs); capture a new snapshot",
		e.Ref, e.Age.Seconds(), e.MaxAge.Seconds())
}

// RefNotFoundError is returned when a ref is absent from the current
// snapshot. Available carries a bounded sample of valid refs for diagnostics.
type RefNotFoundError struct {
	Ref       string
	Available []string
}

func (e *RefNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("ref not found: %s", e.Ref)
	}
	return fmt.Sprintf("ref not found: %s (valid refs include %v)", e.Ref, e.Available)
}
