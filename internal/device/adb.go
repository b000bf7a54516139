package device

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// listTimeout bounds the adb listing call.
const listTimeout = 10 * time.Second

// Info describes one entry from the adb device listing.
type Info struct {
	Serial      string `yaml:"serial"                 json:"serial"`
	State       string `yaml:"state"                  json:"state"` // "device", "offline", "unauthorized"
	Model       string `yaml:"model,omitempty"        json:"model,omitempty"`
	Product     string `yaml:"product,omitempty"      json:"product,omitempty"`
	TransportID string `yaml:"transport_id,omitempty" json:"transport_id,omitempty"`
}

// Available reports whether the device can be used.
func (i Info) Available() bool { return i.State == "device" }

// Lister enumerates currently connected devices. Implementations must return
// an empty list, not an error, when the listing utility is unavailable or
// times out.
type Lister func(ctx context.Context) ([]Info, error)

// ListDevices runs `adb devices -l` and parses its output. A missing adb
// binary or a timeout yields an empty list.
func ListDevices(ctx context.Context) ([]Info, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "adb", "devices", "-l")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, nil
	}
	return parseDeviceList(stdout.String()), nil
}

// parseDeviceList parses `adb devices -l` output. The first line is the
// "List of devices attached" header.
func parseDeviceList(out string) []Info {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	var devices []Info
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		info := Info{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			switch {
			case strings.HasPrefix(f, "model:"):
				info.Model = strings.TrimPrefix(f, "model:")
			case strings.HasPrefix(f, "product:"):
				info.Product = strings.TrimPrefix(f, "product:")
			case strings.HasPrefix(f, "transport_id:"):
				info.TransportID = strings.TrimPrefix(f, "transport_id:")
			}
		}
		devices = append(devices, info)
	}
	return devices
}
