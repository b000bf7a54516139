package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/record"
)

func (s *Server) handleRecordingStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	name := StringParam(params, "name", "")

	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	rec, err := s.agent.Recordings.Start(deviceID, name)
	if err != nil {
		return s.failure("recording_start", err), nil
	}
	return resultText(rec), nil
}

func (s *Server) handleRecordingAddEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	ev := record.Event{
		Type:       StringParam(params, "type", ""),
		X:          IntParam(params, "x", 0),
		Y:          IntParam(params, "y", 0),
		X2:         IntParam(params, "x2", 0),
		Y2:         IntParam(params, "y2", 0),
		Text:       StringParam(params, "text", ""),
		Key:        StringParam(params, "key", ""),
		DurationMs: IntParam(params, "duration_ms", 0),
		DelayMs:    IntParam(params, "delay_ms", 0),
	}
	if err := s.agent.Recordings.AddEvent(deviceID, ev); err != nil {
		return s.failure("recording_add_event", err), nil
	}
	return resultText(okResult{OK: true, Action: "recording_add_event"}), nil
}

func (s *Server) handleRecordingStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	rec, err := s.agent.Recordings.Stop(deviceID)
	if err != nil {
		return s.failure("recording_stop", err), nil
	}
	return resultText(rec), nil
}

func (s *Server) handleRecordingList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := s.agent.Recordings.List()
	return resultText(struct {
		Recordings []record.Recording `yaml:"recordings"`
	}{Recordings: recs}), nil
}

func (s *Server) handleRecordingDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := StringParam(params, "recording_id", "")

	if id == "" {
		return mcp.NewToolResultError("recording_id is required"), nil
	}
	deleted := s.agent.Recordings.Delete(id)
	return resultText(struct {
		OK      bool `yaml:"ok"`
		Deleted bool `yaml:"deleted"`
	}{OK: true, Deleted: deleted}), nil
}

func (s *Server) handleRecordingPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := StringParam(params, "recording_id", "")
	speed := FloatParam(params, "speed", 1.0)

	if id == "" {
		return mcp.NewToolResultError("recording_id is required"), nil
	}
	played, err := s.agent.Recordings.Play(ctx, id, speed)
	if err != nil {
		return s.failure("recording_play", err), nil
	}
	return resultText(struct {
		OK     bool `yaml:"ok"`
		Events int  `yaml:"events_played"`
	}{OK: true, Events: played}), nil
}

func (s *Server) handleRecordingExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	id := StringParam(params, "recording_id", "")

	if id == "" {
		return mcp.NewToolResultError("recording_id is required"), nil
	}
	data, err := s.agent.Recordings.Export(id)
	if err != nil {
		return s.failure("recording_export", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRecordingImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	data := StringParam(params, "data", "")

	if data == "" {
		return mcp.NewToolResultError("data is required"), nil
	}
	rec, err := s.agent.Recordings.Import([]byte(data))
	if err != nil {
		return s.failure("recording_import", err), nil
	}
	return resultText(rec), nil
}
