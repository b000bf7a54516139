package device

import "regexp"

// deviceIDRe is the strict allow-list for device serials. Device IDs feed a
// shell-backed adb invocation, so anything outside this set is rejected
// before a connection is ever attempted.
var deviceIDRe = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// maxDeviceIDLen bounds serial length; real serials are far shorter.
const maxDeviceIDLen = 255

// ValidDeviceID reports whether id passes the format check. The empty string
// is valid and means "use the default device".
func ValidDeviceID(id string) bool {
	if id == "" {
		return true
	}
	if len(id) > maxDeviceIDLen {
		return false
	}
	return deviceIDRe.MatchString(id)
}
