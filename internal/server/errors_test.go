package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/droidcli/droidcli/internal/agent"
	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/ref"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantKind  string
		wantKnown bool
	}{
		{"invalid id", &device.InvalidIDError{ID: "x;y"}, "InvalidDeviceId", true},
		{"not found", &device.NotFoundError{ID: "gone"}, "DeviceNotFound", true},
		{"multiple", &device.MultipleDevicesError{Serials: []string{"a", "b"}}, "MultipleDevices", true},
		{"connection", &device.ConnectionError{Key: "a", Reason: "connection lost"}, "DeviceConnectionError", true},
		{"malformed", &ref.MalformedInputError{Reason: "bad xml"}, "MalformedInput", true},
		{"no snapshot", &ref.NoSnapshotError{DeviceID: "a"}, "NoSnapshot", true},
		{"stale", &ref.StaleSnapshotError{Age: time.Minute}, "StaleSnapshot", true},
		{"ref gone", &ref.RefNotFoundError{Ref: "e9"}, "RefNotFound", true},
		{"wrapped connection", fmt.Errorf("check: %w", &device.ConnectionError{Key: "a"}), "DeviceConnectionError", true},
		{"plain", errors.New("boom"), "OperationFailed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, known := errorKind(tt.err)
			if kind != tt.wantKind || known != tt.wantKnown {
				t.Errorf("errorKind(%v) = (%q, %v), want (%q, %v)",
					tt.err, kind, known, tt.wantKind, tt.wantKnown)
			}
		})
	}
}

func resultBody(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not text: %#v", res.Content[0])
	}
	return text.Text
}

func TestFailureShapes(t *testing.T) {
	s := newTestServer(t, &android.Fake{DeviceSerial: "serial1"})

	// A taxonomy error keeps its kind and message verbatim.
	res := s.failure("device_tap", &ref.NoSnapshotError{DeviceID: "serial1"})
	if !res.IsError {
		t.Error("failure must produce an error result")
	}
	body := resultBody(t, res)
	if !strings.Contains(body, "NoSnapshot") {
		t.Errorf("body = %q, want kind NoSnapshot", body)
	}

	// Unknown errors get the generic kind and the action name prefixed.
	res = s.failure("device_tap", errors.New("adb exploded"))
	body = resultBody(t, res)
	if !strings.Contains(body, "OperationFailed") || !strings.Contains(body, "device_tap failed") {
		t.Errorf("body = %q", body)
	}
}

func TestResultText(t *testing.T) {
	res := resultText(map[string]interface{}{"ok": true, "action": "tap"})
	if res.IsError {
		t.Error("resultText must produce a success result")
	}
	body := resultBody(t, res)
	if !strings.Contains(body, "ok: true") || !strings.Contains(body, "action: tap") {
		t.Errorf("body = %q, want YAML fields", body)
	}
}

func newTestServer(t *testing.T, fake *android.Fake) *Server {
	t.Helper()
	connector := func(ctx context.Context, serial string) (android.Device, error) {
		return fake, nil
	}
	lister := func(ctx context.Context) ([]device.Info, error) {
		return []device.Info{{Serial: fake.DeviceSerial, State: "device"}}, nil
	}
	a := agent.NewWithBackend(agent.DefaultConfig(), connector, lister, nil)
	t.Cleanup(a.Close)
	return New(a, nil)
}
