package server

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/watcher"
)

// conditionsFromParam decodes the tool-call "conditions" argument, which
// arrives as a JSON array of {type, value} objects.
func conditionsFromParam(raw interface{}) []watcher.Condition {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	conditions := make([]watcher.Condition, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var c watcher.Condition
		c.Type, _ = obj["type"].(string)
		c.Value, _ = obj["value"].(string)
		conditions = append(conditions, c)
	}
	return conditions
}

func (s *Server) handleWatcherAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	name := StringParam(params, "name", "")
	action := StringParam(params, "action", "click")
	actionTarget := IntParam(params, "action_target", -1)
	priority := IntParam(params, "priority", 0)

	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	conditions := conditionsFromParam(params["conditions"])
	if len(conditions) == 0 {
		return mcp.NewToolResultError("at least one condition is required"), nil
	}
	rule, err := s.agent.Watchers.Add(deviceID, name, conditions, action, actionTarget, priority)
	if err != nil {
		return s.failure("watcher_add", err), nil
	}
	return resultText(rule), nil
}

func (s *Server) handleWatcherRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	name := StringParam(params, "name", "")

	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	removed := s.agent.Watchers.Remove(deviceID, name)
	return resultText(struct {
		OK      bool `yaml:"ok"`
		Removed bool `yaml:"removed"`
	}{OK: true, Removed: removed}), nil
}

func (s *Server) handleWatcherList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	rules := s.agent.Watchers.List(deviceID)
	return resultText(struct {
		Watchers []watcher.Rule `yaml:"watchers"`
		Running  bool           `yaml:"running"`
	}{Watchers: rules, Running: s.agent.Watchers.Running(deviceID)}), nil
}

func (s *Server) handleWatcherStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")
	interval := time.Duration(FloatParam(params, "poll_interval_seconds", 1) * float64(time.Second))

	started, err := s.agent.Watchers.Start(deviceID, interval)
	if err != nil {
		return s.failure("watcher_start", err), nil
	}
	return resultText(struct {
		OK      bool `yaml:"ok"`
		Started bool `yaml:"started"` // false when already running
	}{OK: true, Started: started}), nil
}

func (s *Server) handleWatcherStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	summary := s.agent.Watchers.Stop(deviceID)
	return resultText(summary), nil
}

func (s *Server) handleWatcherTriggerOnce(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	deviceID := StringParam(params, "device_id", "")

	triggered, err := s.agent.Watchers.TriggerOnce(ctx, deviceID)
	if err != nil {
		return s.failure("watcher_trigger_once", err), nil
	}
	return resultText(struct {
		Triggered string `yaml:"triggered,omitempty"`
	}{Triggered: triggered}), nil
}
