package server

import (
	"context"
	"encoding/base64"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/output"
)

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	snap, err := s.agent.CaptureSnapshot(ctx, deviceID)
	if err != nil {
		return s.failure("device_snapshot", err), nil
	}
	return resultText(output.NewSnapshotResult(snap)), nil
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	scale := FloatParam(params, "scale", 0.5)

	shot, err := s.agent.CaptureScreenshot(ctx, deviceID, scale)
	if err != nil {
		return s.failure("screenshot", err), nil
	}
	encoded := base64.StdEncoding.EncodeToString(shot.PNG)
	return mcp.NewToolResultImage("screenshot", encoded, "image/png"), nil
}

func (s *Server) handleFindElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	criteria := criteriaFromParams(params)

	if criteria.IsZero() {
		return mcp.NewToolResultError("at least one search criterion is required"), nil
	}

	key := s.agent.Devices.Key(deviceID)
	matches := s.agent.Snapshots.FindElements(key, criteria)

	return resultText(struct {
		Count    int              `yaml:"count"`
		Elements []output.Element `yaml:"elements,omitempty"`
	}{Count: len(matches), Elements: output.NewElements(matches)}), nil
}
