package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// tapParams extracts the shared ref-or-coordinates targeting parameters.
func tapParams(params map[string]interface{}) (refID string, x, y int, haveXY bool) {
	refID = StringParam(params, "ref", "")
	haveXY = HasParam(params, "x") && HasParam(params, "y")
	x = IntParam(params, "x", 0)
	y = IntParam(params, "y", 0)
	return
}

func (s *Server) handleTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	refID, x, y, haveXY := tapParams(params)

	px, py, err := s.agent.Tap(ctx, deviceID, refID, x, y, haveXY)
	if err != nil {
		return s.failure("device_tap", err), nil
	}
	return resultText(okResult{OK: true, Action: "tap", X: px, Y: py}), nil
}

func (s *Server) handleDoubleTap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	refID, x, y, haveXY := tapParams(params)

	px, py, err := s.agent.DoubleTap(ctx, deviceID, refID, x, y, haveXY)
	if err != nil {
		return s.failure("device_double_tap", err), nil
	}
	return resultText(okResult{OK: true, Action: "double_tap", X: px, Y: py}), nil
}

func (s *Server) handleLongPress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	refID, x, y, haveXY := tapParams(params)
	duration := IntParam(params, "duration_ms", 1000)

	px, py, err := s.agent.LongPress(ctx, deviceID, refID, x, y, duration, haveXY)
	if err != nil {
		return s.failure("device_long_press", err), nil
	}
	return resultText(okResult{OK: true, Action: "long_press", X: px, Y: py}), nil
}

func (s *Server) handleType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	refID := StringParam(params, "ref", "")
	text := StringParam(params, "text", "")
	clear := BoolParam(params, "clear", false)

	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	if err := s.agent.TypeText(ctx, deviceID, refID, text, clear); err != nil {
		return s.failure("device_type", err), nil
	}
	// Only the length goes back out; the text may be a password.
	return resultText(struct {
		OK     bool   `yaml:"ok"`
		Action string `yaml:"action"`
		Typed  int    `yaml:"typed_chars"`
	}{OK: true, Action: "type", Typed: len(text)}), nil
}

func (s *Server) handleSwipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	x1 := IntParam(params, "x1", 0)
	y1 := IntParam(params, "y1", 0)
	x2 := IntParam(params, "x2", 0)
	y2 := IntParam(params, "y2", 0)
	duration := IntParam(params, "duration_ms", 300)

	if !HasParam(params, "x1") || !HasParam(params, "y1") || !HasParam(params, "x2") || !HasParam(params, "y2") {
		return mcp.NewToolResultError("x1, y1, x2, and y2 are required"), nil
	}
	if err := s.agent.Swipe(ctx, deviceID, x1, y1, x2, y2, duration); err != nil {
		return s.failure("device_swipe", err), nil
	}
	return resultText(okResult{OK: true, Action: "swipe"}), nil
}

func (s *Server) handleClearText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	refID := StringParam(params, "ref", "")

	if err := s.agent.ClearText(ctx, deviceID, refID); err != nil {
		return s.failure("clear_text", err), nil
	}
	return resultText(okResult{OK: true, Action: "clear_text"}), nil
}
