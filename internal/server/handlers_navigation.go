package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handlePressKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	key := StringParam(params, "key", "")

	if key == "" {
		return mcp.NewToolResultError("key is required"), nil
	}
	if err := s.agent.PressKey(ctx, deviceID, key); err != nil {
		return s.failure("press_key", err), nil
	}
	return resultText(okResult{OK: true, Action: "press_key"}), nil
}

func (s *Server) handleGoBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	if err := s.agent.PressKey(ctx, deviceID, "back"); err != nil {
		return s.failure("go_back", err), nil
	}
	return resultText(okResult{OK: true, Action: "back"}), nil
}

func (s *Server) handleGoHome(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	if err := s.agent.PressKey(ctx, deviceID, "home"); err != nil {
		return s.failure("go_home", err), nil
	}
	return resultText(okResult{OK: true, Action: "home"}), nil
}

func (s *Server) handleAppStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	pkg := StringParam(params, "package", "")
	activity := StringParam(params, "activity", "")

	if pkg == "" {
		return mcp.NewToolResultError("package is required"), nil
	}
	if err := s.agent.AppStart(ctx, deviceID, pkg, activity); err != nil {
		return s.failure("app_start", err), nil
	}
	return resultText(okResult{OK: true, Action: "app_start"}), nil
}

func (s *Server) handleAppStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	pkg := StringParam(params, "package", "")

	if pkg == "" {
		return mcp.NewToolResultError("package is required"), nil
	}
	if err := s.agent.AppStop(ctx, deviceID, pkg); err != nil {
		return s.failure("app_stop", err), nil
	}
	return resultText(okResult{OK: true, Action: "app_stop"}), nil
}

func (s *Server) handleAppCurrent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	pkg, activity, err := s.agent.CurrentApp(ctx, deviceID)
	if err != nil {
		return s.failure("app_current", err), nil
	}
	return resultText(struct {
		Package  string `yaml:"package"`
		Activity string `yaml:"activity"`
	}{Package: pkg, Activity: activity}), nil
}

func (s *Server) handleOpenNotification(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	if err := s.agent.OpenNotification(ctx, deviceID); err != nil {
		return s.failure("open_notification", err), nil
	}
	return resultText(okResult{OK: true, Action: "open_notification"}), nil
}

func (s *Server) handleOpenQuickSettings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	if err := s.agent.OpenQuickSettings(ctx, deviceID); err != nil {
		return s.failure("open_quick_settings", err), nil
	}
	return resultText(okResult{OK: true, Action: "open_quick_settings"}), nil
}

func (s *Server) handleSetOrientation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	rotation := IntParam(params, "rotation", 0)

	if rotation < 0 || rotation > 3 {
		return mcp.NewToolResultError("rotation must be between 0 and 3"), nil
	}
	if err := s.agent.SetOrientation(ctx, deviceID, rotation); err != nil {
		return s.failure("set_orientation", err), nil
	}
	return resultText(okResult{OK: true, Action: "set_orientation"}), nil
}
