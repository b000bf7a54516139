package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handlePerfMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	pkg := StringParam(params, "package", "")

	metrics, err := s.agent.Perf.Sample(ctx, deviceID, pkg)
	if err != nil {
		return s.failure("perf_metrics", err), nil
	}
	return resultText(metrics), nil
}

func (s *Server) handlePerfMonitorStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	pkg := StringParam(params, "package", "")
	interval := time.Duration(FloatParam(params, "poll_interval_seconds", 1) * float64(time.Second))

	id, err := s.agent.Perf.StartSession(deviceID, pkg, interval)
	if err != nil {
		return s.failure("perf_monitor_start", err), nil
	}
	return resultText(struct {
		OK        bool   `yaml:"ok"`
		SessionID string `yaml:"session_id"`
	}{OK: true, SessionID: id}), nil
}

func (s *Server) handlePerfMonitorStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := StringParam(params, "session_id", "")

	if id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	session, err := s.agent.Perf.StopSession(id)
	if err != nil {
		return s.failure("perf_monitor_stop", err), nil
	}
	return resultText(session), nil
}
