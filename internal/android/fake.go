package android

import (
	"context"
	"fmt"
	"sync"
)

var _ Device = (*Fake)(nil)

// Fake is an in-memory Device for tests. Zero value is usable; configure the
// fields before handing it to the code under test. All methods record their
// invocation in Calls.
type Fake struct {
	DeviceSerial string
	Model        string
	Width        int
	Height       int
	Package      string
	Activity     string
	Hierarchy    string // XML returned by DumpHierarchy
	PNG          []byte
	ShellOutput  map[string]string // first shell arg -> canned output

	// Err, when set, is returned by every operation. InfoErr only fails
	// the liveness probe.
	Err     error
	InfoErr error

	mu    sync.Mutex
	Calls []string
}

func (f *Fake) record(format string, args ...interface{}) {
	f.mu.Lock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

// CallNames returns a copy of the recorded call log.
func (f *Fake) CallNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}

func (f *Fake) Serial() string { return f.DeviceSerial }

func (f *Fake) Info(ctx context.Context) (DeviceInfo, error) {
	f.record("info")
	if f.InfoErr != nil {
		return DeviceInfo{}, f.InfoErr
	}
	if f.Err != nil {
		return DeviceInfo{}, f.Err
	}
	return DeviceInfo{Serial: f.DeviceSerial, Model: f.Model}, nil
}

func (f *Fake) WindowSize(ctx context.Context) (int, int, error) {
	f.record("window_size")
	if f.Err != nil {
		return 0, 0, f.Err
	}
	return f.Width, f.Height, nil
}

func (f *Fake) CurrentApp(ctx context.Context) (string, string, error) {
	f.record("current_app")
	if f.Err != nil {
		return "", "", f.Err
	}
	return f.Package, f.Activity, nil
}

func (f *Fake) DumpHierarchy(ctx context.Context) (string, error) {
	f.record("dump")
	if f.Err != nil {
		return "", f.Err
	}
	return f.Hierarchy, nil
}

func (f *Fake) Screenshot(ctx context.Context) ([]byte, error) {
	f.record("screenshot")
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PNG, nil
}

func (f *Fake) Click(ctx context.Context, x, y int) error {
	f.record("click %d,%d", x, y)
	return f.Err
}

func (f *Fake) DoubleClick(ctx context.Context, x, y int) error {
	f.record("double_click %d,%d", x, y)
	return f.Err
}

func (f *Fake) LongClick(ctx context.Context, x, y, duration int) error {
	f.record("long_click %d,%d,%d", x, y, duration)
	return f.Err
}

func (f *Fake) Swipe(ctx context.Context, x1, y1, x2, y2, duration int) error {
	f.record("swipe %d,%d->%d,%d", x1, y1, x2, y2)
	return f.Err
}

func (f *Fake) SendText(ctx context.Context, text string) error {
	f.record("send_text %d", len(text))
	return f.Err
}

func (f *Fake) ClearText(ctx context.Context) error {
	f.record("clear_text")
	return f.Err
}

func (f *Fake) Press(ctx context.Context, key string) error {
	if _, err := ResolveKey(key); err != nil {
		return err
	}
	f.record("press %s", key)
	return f.Err
}

func (f *Fake) AppStart(ctx context.Context, pkg, activity string) error {
	f.record("app_start %s/%s", pkg, activity)
	return f.Err
}

func (f *Fake) AppStop(ctx context.Context, pkg string) error {
	f.record("app_stop %s", pkg)
	return f.Err
}

func (f *Fake) Shell(ctx context.Context, args ...string) (string, error) {
	f.record("shell %v", args)
	if f.Err != nil {
		return "", f.Err
	}
	if len(args) > 0 {
		if out, ok := f.ShellOutput[args[0]]; ok {
			return out, nil
		}
	}
	return "", nil
}

func (f *Fake) SetOrientation(ctx context.Context, rotation int) error {
	f.record("set_orientation %d", rotation)
	return f.Err
}

func (f *Fake) OpenNotification(ctx context.Context) error {
	f.record("open_notification")
	return f.Err
}

func (f *Fake) OpenQuickSettings(ctx context.Context) error {
	f.record("open_quick_settings")
	return f.Err
}
