// Package agent wires the managers into one explicitly constructed context
// object owned by whichever surface (CLI command or MCP server) dispatches
// tool calls. It lives for the process lifetime and tears everything down on
// Close.
package agent

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/perf"
	"github.com/droidcli/droidcli/internal/record"
	"github.com/droidcli/droidcli/internal/ref"
	"github.com/droidcli/droidcli/internal/watcher"
)

// Config holds the tunable knobs of the core managers.
type Config struct {
	CacheTTL     time.Duration // device connection idle TTL
	MaxDevices   int           // device connection cache capacity
	StaleAfter   time.Duration // snapshot staleness threshold
	HistoryDepth int           // snapshots kept per device
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     device.DefaultTTL,
		MaxDevices:   device.DefaultCapacity,
		StaleAfter:   ref.DefaultStaleAfter,
		HistoryDepth: ref.DefaultHistoryDepth,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by DROIDCLI_* environment
// variables (durations in seconds).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v, ok := envSeconds("DROIDCLI_CACHE_TTL"); ok {
		cfg.CacheTTL = v
	}
	if v, ok := envInt("DROIDCLI_MAX_DEVICES"); ok {
		cfg.MaxDevices = v
	}
	if v, ok := envSeconds("DROIDCLI_STALE_SECONDS"); ok {
		cfg.StaleAfter = v
	}
	if v, ok := envInt("DROIDCLI_HISTORY_DEPTH"); ok {
		cfg.HistoryDepth = v
	}
	return cfg
}

func envInt(name string) (int, bool) {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

func envSeconds(name string) (time.Duration, bool) {
	if v, ok := envInt(name); ok {
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

// Agent bundles the core managers behind one handle.
type Agent struct {
	Devices    *device.Manager
	Snapshots  *ref.Manager
	Watchers   *watcher.Manager
	Perf       *perf.Monitor
	Recordings *record.Manager

	log *zap.Logger
}

// New builds an agent backed by the real adb connector and lister.
func New(cfg Config, log *zap.Logger) *Agent {
	connector := func(ctx context.Context, serial string) (android.Device, error) {
		return android.Connect(ctx, serial)
	}
	return NewWithBackend(cfg, connector, device.ListDevices, log)
}

// NewWithBackend builds an agent with an injected connector and lister.
// Tests use this to substitute fake devices.
func NewWithBackend(cfg Config, connect device.Connector, list device.Lister, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	devices := device.NewManager(connect, list, cfg.CacheTTL, cfg.MaxDevices, log.Named("device"))
	return &Agent{
		Devices:    devices,
		Snapshots:  ref.NewManager(cfg.HistoryDepth, cfg.StaleAfter, log.Named("snapshot")),
		Watchers:   watcher.NewManager(devices, log.Named("watcher")),
		Perf:       perf.NewMonitor(devices, log.Named("perf")),
		Recordings: record.NewManager(devices, log.Named("record")),
		log:        log,
	}
}

// Close stops all background loops, disconnects every device, and clears all
// snapshot state.
func (a *Agent) Close() {
	a.Watchers.StopAll()
	a.Perf.StopAll()
	a.Devices.DisconnectAll()
	a.Snapshots.ClearAll()
}

// CaptureSnapshot pulls a fresh UI dump from the device and stores it as the
// new current snapshot under the device's cache key.
func (a *Agent) CaptureSnapshot(ctx context.Context, deviceID string) (*ref.Snapshot, error) {
	var snap *ref.Snapshot
	err := a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		pkg, activity, err := dev.CurrentApp(ctx)
		if err != nil {
			pkg, activity = "unknown", "unknown"
		}
		width, height, err := dev.WindowSize(ctx)
		if err != nil {
			return err
		}
		dump, err := dev.DumpHierarchy(ctx)
		if err != nil {
			return err
		}
		snap, err = a.Snapshots.CreateSnapshot(a.Devices.Key(deviceID), dump, pkg, activity, width, height)
		return err
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("snapshot captured",
		zap.String("snapshot", snap.ID), zap.Int("elements", snap.Len()))
	return snap, nil
}

// resolveTarget turns a ref or explicit coordinates into a point. Exactly
// one of the two forms must be provided.
func (a *Agent) resolveTarget(deviceID, refID string, x, y int, haveXY bool) (int, int, error) {
	if refID != "" {
		return a.Snapshots.Position(a.Devices.Key(deviceID), refID)
	}
	if haveXY {
		return x, y, nil
	}
	return 0, 0, fmt.Errorf("either a ref or both x and y must be provided")
}

// Tap taps an element by ref or a raw coordinate. Returns the tapped point.
func (a *Agent) Tap(ctx context.Context, deviceID, refID string, x, y int, haveXY bool) (int, int, error) {
	px, py, err := a.resolveTarget(deviceID, refID, x, y, haveXY)
	if err != nil {
		return 0, 0, err
	}
	err = a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.Click(ctx, px, py)
	})
	return px, py, err
}

// DoubleTap double-taps an element by ref or a raw coordinate.
func (a *Agent) DoubleTap(ctx context.Context, deviceID, refID string, x, y int, haveXY bool) (int, int, error) {
	px, py, err := a.resolveTarget(deviceID, refID, x, y, haveXY)
	if err != nil {
		return 0, 0, err
	}
	err = a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.DoubleClick(ctx, px, py)
	})
	return px, py, err
}

// LongPress long-presses an element by ref or a raw coordinate.
func (a *Agent) LongPress(ctx context.Context, deviceID, refID string, x, y, durationMs int, haveXY bool) (int, int, error) {
	px, py, err := a.resolveTarget(deviceID, refID, x, y, haveXY)
	if err != nil {
		return 0, 0, err
	}
	err = a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.LongClick(ctx, px, py, durationMs)
	})
	return px, py, err
}

// Swipe performs a swipe gesture.
func (a *Agent) Swipe(ctx context.Context, deviceID string, x1, y1, x2, y2, durationMs int) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.Swipe(ctx, x1, y1, x2, y2, durationMs)
	})
}

// TypeText optionally focuses an element (by ref), optionally clears the
// field, then types. The text itself never reaches the log, only its length.
func (a *Agent) TypeText(ctx context.Context, deviceID, refID, text string, clear bool) error {
	err := a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		if refID != "" {
			px, py, err := a.Snapshots.Position(a.Devices.Key(deviceID), refID)
			if err != nil {
				return err
			}
			if err := dev.Click(ctx, px, py); err != nil {
				return err
			}
		}
		if clear {
			if err := dev.ClearText(ctx); err != nil {
				return err
			}
		}
		return dev.SendText(ctx, text)
	})
	if err == nil {
		a.log.Info("text typed", zap.String("text", fmt.Sprintf("<%d chars>", len(text))))
	}
	return err
}

// ClearText clears the focused text field (optionally focusing a ref first).
func (a *Agent) ClearText(ctx context.Context, deviceID, refID string) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		if refID != "" {
			px, py, err := a.Snapshots.Position(a.Devices.Key(deviceID), refID)
			if err != nil {
				return err
			}
			if err := dev.Click(ctx, px, py); err != nil {
				return err
			}
		}
		return dev.ClearText(ctx)
	})
}

// PressKey sends a named key event.
func (a *Agent) PressKey(ctx context.Context, deviceID, key string) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.Press(ctx, key)
	})
}

// Unlock wakes the screen and swipes up to dismiss the keyguard.
func (a *Agent) Unlock(ctx context.Context, deviceID string) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		if err := dev.Press(ctx, "wakeup"); err != nil {
			return err
		}
		width, height, err := dev.WindowSize(ctx)
		if err != nil {
			return err
		}
		return dev.Swipe(ctx, width/2, height*3/4, width/2, height/4, 300)
	})
}

// DeviceInfo returns identity plus screen size for a device.
func (a *Agent) DeviceInfo(ctx context.Context, deviceID string) (android.DeviceInfo, int, int, error) {
	var (
		info          android.DeviceInfo
		width, height int
	)
	err := a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		var err error
		info, err = dev.Info(ctx)
		if err != nil {
			return err
		}
		width, height, err = dev.WindowSize(ctx)
		return err
	})
	return info, width, height, err
}
