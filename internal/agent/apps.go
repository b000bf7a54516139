package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/perf"
	"github.com/droidcli/droidcli/internal/ref"
)

// AppStart launches a package on the device, optionally at a specific
// activity. Package names are validated before touching the shell.
func (a *Agent) AppStart(ctx context.Context, deviceID, pkg, activity string) error {
	if !perf.ValidPackageName(pkg) {
		return &ref.MalformedInputError{Reason: "invalid package name: " + pkg}
	}
	a.log.Info("starting app", zap.String("package", pkg), zap.String("activity", activity))
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.AppStart(ctx, pkg, activity)
	})
}

// AppStop force-stops a package.
func (a *Agent) AppStop(ctx context.Context, deviceID, pkg string) error {
	if !perf.ValidPackageName(pkg) {
		return &ref.MalformedInputError{Reason: "invalid package name: " + pkg}
	}
	a.log.Info("stopping app", zap.String("package", pkg))
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.AppStop(ctx, pkg)
	})
}

// CurrentApp returns the foreground package and activity.
func (a *Agent) CurrentApp(ctx context.Context, deviceID string) (pkg, activity string, err error) {
	err = a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		pkg, activity, err = dev.CurrentApp(ctx)
		return err
	})
	return pkg, activity, err
}

// OpenNotification expands the notification shade.
func (a *Agent) OpenNotification(ctx context.Context, deviceID string) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.OpenNotification(ctx)
	})
}

// OpenQuickSettings expands the quick settings panel.
func (a *Agent) OpenQuickSettings(ctx context.Context, deviceID string) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.OpenQuickSettings(ctx)
	})
}

// SetOrientation fixes the screen rotation. Valid rotations are 0 through 3.
func (a *Agent) SetOrientation(ctx context.Context, deviceID string, rotation int) error {
	return a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		return dev.SetOrientation(ctx, rotation)
	})
}
