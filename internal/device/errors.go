package device

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidIDError means the device identifier failed format validation. This
// is always a caller-input error and is never retried.
type InvalidIDError struct {
	ID string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid device id %q: must match [a-zA-Z0-9._:-]+", e.ID)
}

// NotFoundError means the requested (or implied default) device is not
// currently available. An empty ID means no devices are connected at all.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "no Android devices connected"
	}
	return fmt.Sprintf("device not found: %s", e.ID)
}

// MultipleDevicesError means more than one device is available and none was
// explicitly selected, so the default cannot be resolved unambiguously.
type MultipleDevicesError struct {
	Serials []string
}

func (e *MultipleDevicesError) Error() string {
	return fmt.Sprintf("%d devices connected (%s): select one explicitly",
		len(e.Serials), strings.Join(e.Serials, ", "))
}

// ConnectionError means a connection attempt or liveness probe failed for a
// syntactically valid device. The cache entry for Key is guaranteed purged,
// so a retry reconnects fresh instead of reusing the broken handle.
type ConnectionError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("device connection failed for %q: %s", e.Key, e.Reason)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsDeviceError reports whether err belongs to the connection-layer taxonomy
// that must propagate to callers unmodified, never rewrapped as a generic
// failure.
func IsDeviceError(err error) bool {
	var (
		invalid  *InvalidIDError
		notFound *NotFoundError
		multiple *MultipleDevicesError
		conn     *ConnectionError
	)
	return errors.As(err, &invalid) ||
		errors.As(err, &notFound) ||
		errors.As(err, &multiple) ||
		errors.As(err, &conn)
}
