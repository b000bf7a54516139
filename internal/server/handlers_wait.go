package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/output"
)

func waitTimeout(params map[string]interface{}) time.Duration {
	return time.Duration(FloatParam(params, "timeout_seconds", 10) * float64(time.Second))
}

func (s *Server) handleWaitForElement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	criteria := criteriaFromParams(params)

	if criteria.IsZero() {
		return mcp.NewToolResultError("at least one search criterion is required"), nil
	}
	el, err := s.agent.WaitForElement(ctx, deviceID, criteria, waitTimeout(params))
	if err != nil {
		return s.failure("wait_for_element", err), nil
	}
	return resultText(output.NewElement(&el)), nil
}

func (s *Server) handleWaitForElementGone(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	criteria := criteriaFromParams(params)

	if criteria.IsZero() {
		return mcp.NewToolResultError("at least one search criterion is required"), nil
	}
	if err := s.agent.WaitForElementGone(ctx, deviceID, criteria, waitTimeout(params)); err != nil {
		return s.failure("wait_for_element_gone", err), nil
	}
	return resultText(okResult{OK: true, Action: "wait_for_element_gone"}), nil
}

func (s *Server) handleWaitForActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	pkg := StringParam(params, "package", "")
	activity := StringParam(params, "activity", "")

	if pkg == "" {
		return mcp.NewToolResultError("package is required"), nil
	}
	if err := s.agent.WaitForActivity(ctx, deviceID, pkg, activity, waitTimeout(params)); err != nil {
		return s.failure("wait_for_activity", err), nil
	}
	return resultText(okResult{OK: true, Action: "wait_for_activity"}), nil
}
