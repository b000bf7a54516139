package server

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/ref"
)

// errorPayload is the structured failure shape returned by every tool.
type errorPayload struct {
	Error   string `yaml:"error"`
	Message string `yaml:"message"`
}

// resultText serializes a success payload to YAML for the MCP response.
func resultText(v interface{}) *mcp.CallToolResult {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("%+v", v))
	}
	return mcp.NewToolResultText(string(b))
}

// failure maps an error to a tool error result. Connection-layer and ref
// errors keep their kind and message unmodified; anything unexpected is
// wrapped into a generic "operation failed" shape and logged at error
// severity so callers get a consistent shape without losing the diagnostic
// text.
func (s *Server) failure(action string, err error) *mcp.CallToolResult {
	kind, known := errorKind(err)
	msg := err.Error()
	if !known {
		s.log.Error("tool call failed", zap.String("action", action), zap.Error(err))
		msg = fmt.Sprintf("%s failed: %s", action, msg)
	}
	b, merr := yaml.Marshal(errorPayload{Error: kind, Message: msg})
	if merr != nil {
		return mcp.NewToolResultError(msg)
	}
	return mcp.NewToolResultError(string(b))
}

// errorKind classifies an error by the taxonomy exposed to tool callers.
func errorKind(err error) (string, bool) {
	var (
		invalid   *device.InvalidIDError
		notFound  *device.NotFoundError
		multiple  *device.MultipleDevicesError
		conn      *device.ConnectionError
		malformed *ref.MalformedInputError
		noSnap    *ref.NoSnapshotError
		stale     *ref.StaleSnapshotError
		refGone   *ref.RefNotFoundError
	)
	switch {
	case errors.As(err, &invalid):
		return "InvalidDeviceId", true
	case errors.As(err, &notFound):
		return "DeviceNotFound", true
	case errors.As(err, &multiple):
		return "MultipleDevices", true
	case errors.As(err, &conn):
		return "DeviceConnectionError", true
	case errors.As(err, &malformed):
		return "MalformedInput", true
	case errors.As(err, &noSnap):
		return "NoSnapshot", true
	case errors.As(err, &stale):
		return "StaleSnapshot", true
	case errors.As(err, &refGone):
		return "RefNotFound", true
	}
	return "OperationFailed", false
}
