// Package android wraps the device automation backend consumed by the rest
// of the system. Everything talks to a Device; the production implementation
// shells out to adb, tests substitute fakes.
package android

import "context"

// DeviceInfo is the result of the cheap liveness probe plus basic identity.
type DeviceInfo struct {
	Serial         string `yaml:"serial"                    json:"serial"`
	Model          string `yaml:"model,omitempty"           json:"model,omitempty"`
	AndroidVersion string `yaml:"android_version,omitempty" json:"android_version,omitempty"`
	SDKVersion     string `yaml:"sdk_version,omitempty"     json:"sdk_version,omitempty"`
}

// Device is one live connection to an Android device. Implementations must
// tolerate concurrent calls; the connection cache does not serialize use of
// a single handle.
type Device interface {
	// Serial returns the device serial this handle was connected with
	// (empty when connected to the single default device).
	Serial() string

	// Info performs a cheap round trip and returns device identity.
	// It doubles as the liveness probe: an error means the connection
	// is no longer usable.
	Info(ctx context.Context) (DeviceInfo, error)

	// WindowSize returns the display size in pixels.
	WindowSize(ctx context.Context) (width, height int, err error)

	// CurrentApp returns the foreground package and activity.
	CurrentApp(ctx context.Context) (pkg, activity string, err error)

	// DumpHierarchy returns the raw UI hierarchy XML.
	DumpHierarchy(ctx context.Context) (string, error)

	// Screenshot returns a PNG-encoded capture of the screen.
	Screenshot(ctx context.Context) ([]byte, error)

	Click(ctx context.Context, x, y int) error
	DoubleClick(ctx context.Context, x, y int) error
	LongClick(ctx context.Context, x, y int, duration int) error
	Swipe(ctx context.Context, x1, y1, x2, y2 int, duration int) error

	// SendText types text into the focused element.
	SendText(ctx context.Context, text string) error

	// ClearText clears the focused text field.
	ClearText(ctx context.Context) error

	// Press sends a named key (see ResolveKey for accepted names).
	Press(ctx context.Context, key string) error

	// AppStart launches a package, optionally at an explicit activity.
	AppStart(ctx context.Context, pkg, activity string) error

	// AppStop force-stops a package.
	AppStop(ctx context.Context, pkg string) error

	// Shell runs a raw shell command on the device and returns its output.
	Shell(ctx context.Context, args ...string) (string, error)

	// SetOrientation fixes screen rotation (0=portrait .. 3).
	SetOrientation(ctx context.Context, rotation int) error

	// OpenNotification expands the notification shade.
	OpenNotification(ctx context.Context) error

	// OpenQuickSettings expands the quick settings panel.
	OpenQuickSettings(ctx context.Context) error
}
