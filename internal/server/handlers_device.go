package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/device"
)

// deviceListResult is the payload of the device_list tool.
type deviceListResult struct {
	Count          int           `yaml:"count"`
	AvailableCount int           `yaml:"available_count"`
	Devices        []deviceEntry `yaml:"devices"`
	Selected       string        `yaml:"selected,omitempty"`
}

type deviceEntry struct {
	device.Info `yaml:",inline"`
	Available   bool `yaml:"available"`
}

func (s *Server) handleDeviceList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices := s.agent.Devices.Devices(ctx)

	result := deviceListResult{
		Count:    len(devices),
		Selected: s.agent.Devices.Selected(),
	}
	for _, d := range devices {
		result.Devices = append(result.Devices, deviceEntry{Info: d, Available: d.Available()})
		if d.Available() {
			result.AvailableCount++
		}
	}
	return resultText(result), nil
}

func (s *Server) handleDeviceSelect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	previous := s.agent.Devices.Selected()
	if err := s.agent.Devices.Select(ctx, deviceID); err != nil {
		return s.failure("device_select", err), nil
	}

	return resultText(struct {
		Selected string `yaml:"selected"`
		Previous string `yaml:"previous,omitempty"`
	}{Selected: deviceID, Previous: previous}), nil
}

func (s *Server) handleDeviceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	info, width, height, err := s.agent.DeviceInfo(ctx, deviceID)
	if err != nil {
		return s.failure("device_info", err), nil
	}

	return resultText(struct {
		Serial         string `yaml:"serial,omitempty"`
		Model          string `yaml:"model,omitempty"`
		AndroidVersion string `yaml:"android_version,omitempty"`
		SDKVersion     string `yaml:"sdk_version,omitempty"`
		ScreenWidth    int    `yaml:"screen_width"`
		ScreenHeight   int    `yaml:"screen_height"`
	}{
		Serial:         info.Serial,
		Model:          info.Model,
		AndroidVersion: info.AndroidVersion,
		SDKVersion:     info.SDKVersion,
		ScreenWidth:    width,
		ScreenHeight:   height,
	}), nil
}

func (s *Server) handleDeviceUnlock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	if err := s.agent.Unlock(ctx, deviceID); err != nil {
		return s.failure("device_unlock", err), nil
	}
	return resultText(okResult{OK: true, Action: "unlock"}), nil
}

// okResult is the minimal success payload for action tools.
type okResult struct {
	OK     bool   `yaml:"ok"`
	Action string `yaml:"action"`
	X      int    `yaml:"x,omitempty"`
	Y      int    `yaml:"y,omitempty"`
}
