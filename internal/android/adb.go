package android

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// adbTimeout bounds any single adb invocation so a wedged device
	// cannot hang a caller forever.
	adbTimeout = 30 * time.Second

	// clearTextDeletes is how many delete key events ClearText sends after
	// jumping to the end of the field.
	clearTextDeletes = 50
)

var (
	windowSizeRe = regexp.MustCompile(`(?m)^(?:Override|Physical) size:\s*(\d+)x(\d+)`)
	currentAppRe = regexp.MustCompile(`([A-Za-z0-9_.]+)/([A-Za-z0-9_.$]+)`)
)

var _ Device = (*ADBDevice)(nil)

// ADBDevice is a Device backed by the adb binary. A handle is cheap state
// (serial + binary path); the expensive part is the validation round trip
// performed by Connect.
type ADBDevice struct {
	serial  string // empty = default device (no -s flag)
	adbPath string
}

// Connect validates that adb can reach the device and returns a handle.
// An empty serial targets adb's default device.
func Connect(ctx context.Context, serial string) (*ADBDevice, error) {
	d := &ADBDevice{serial: serial, adbPath: "adb"}
	state, err := d.run(ctx, "get-state")
	if err != nil {
		return nil, fmt.Errorf("adb get-state: %w", err)
	}
	if s := strings.TrimSpace(state); s != "device" {
		return nil, fmt.Errorf("device state is %q, want \"device\"", s)
	}
	return d, nil
}

func (d *ADBDevice) Serial() string { return d.serial }

// args prepends the serial selector when one is set.
func (d *ADBDevice) args(rest ...string) []string {
	if d.serial == "" {
		return rest
	}
	return append([]string{"-s", d.serial}, rest...)
}

// run executes one adb command and returns combined stdout.
func (d *ADBDevice) run(ctx context.Context, rest ...string) (string, error) {
	out, err := d.runRaw(ctx, rest...)
	return string(out), err
}

func (d *ADBDevice) runRaw(ctx context.Context, rest ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, adbTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.adbPath, d.args(rest...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("adb %s: %s", rest[0], msg)
	}
	return stdout.Bytes(), nil
}

// Shell runs a command on the device shell.
func (d *ADBDevice) Shell(ctx context.Context, args ...string) (string, error) {
	return d.run(ctx, append([]string{"shell"}, args...)...)
}

// Info reads basic identity properties. This is the liveness probe used by
// the connection cache: it fails fast when the device has gone away.
func (d *ADBDevice) Info(ctx context.Context) (DeviceInfo, error) {
	out, err := d.Shell(ctx,
		"getprop", "ro.product.model", ";",
		"getprop", "ro.build.version.release", ";",
		"getprop", "ro.build.version.sdk")
	if err != nil {
		return DeviceInfo{}, err
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	info := DeviceInfo{Serial: d.serial}
	if len(lines) > 0 {
		info.Model = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 {
		info.AndroidVersion = strings.TrimSpace(lines[1])
	}
	if len(lines) > 2 {
		info.SDKVersion = strings.TrimSpace(lines[2])
	}
	return info, nil
}

// WindowSize parses `wm size`. An override size, when present, wins over the
// physical size.
func (d *ADBDevice) WindowSize(ctx context.Context) (int, int, error) {
	out, err := d.Shell(ctx, "wm", "size")
	if err != nil {
		return 0, 0, err
	}
	w, h, err := parseWindowSize(out)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func parseWindowSize(out string) (int, int, error) {
	var w, h int
	found := false
	for _, m := range windowSizeRe.FindAllStringSubmatch(out, -1) {
		// Later matches (Override) replace earlier (Physical).
		w, _ = strconv.Atoi(m[1])
		h, _ = strconv.Atoi(m[2])
		found = true
	}
	if !found {
		return 0, 0, fmt.Errorf("cannot parse window size from %q", strings.TrimSpace(out))
	}
	return w, h, nil
}

// CurrentApp returns the foreground package and activity from the activity
// manager, falling back to the focused window.
func (d *ADBDevice) CurrentApp(ctx context.Context) (string, string, error) {
	out, err := d.Shell(ctx, "dumpsys", "activity", "activities", "|", "grep", "mResumedActivity")
	if err == nil {
		if pkg, activity, ok := parseCurrentApp(out); ok {
			return pkg, activity, nil
		}
	}
	out, err = d.Shell(ctx, "dumpsys", "window", "|", "grep", "mCurrentFocus")
	if err != nil {
		return "", "", err
	}
	if pkg, activity, ok := parseCurrentApp(out); ok {
		return pkg, activity, nil
	}
	return "", "", fmt.Errorf("cannot determine foreground app")
}

func parseCurrentApp(out string) (string, string, bool) {
	m := currentAppRe.FindStringSubmatch(out)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// DumpHierarchy dumps the UI tree via uiautomator. The dump writes XML to
// the stream followed by a status line; everything outside the XML envelope
// is stripped.
func (d *ADBDevice) DumpHierarchy(ctx context.Context) (string, error) {
	out, err := d.run(ctx, "exec-out", "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return "", err
	}
	xml, err := trimHierarchyDump(out)
	if err != nil {
		return "", err
	}
	return xml, nil
}

func trimHierarchyDump(out string) (string, error) {
	start := strings.Index(out, "<?xml")
	if start < 0 {
		start = strings.Index(out, "<hierarchy")
	}
	end := strings.LastIndex(out, "</hierarchy>")
	if start < 0 || end < 0 {
		return "", fmt.Errorf("uiautomator dump did not produce a hierarchy document")
	}
	return out[start : end+len("</hierarchy>")], nil
}

// Screenshot captures the screen as PNG bytes.
func (d *ADBDevice) Screenshot(ctx context.Context) ([]byte, error) {
	return d.runRaw(ctx, "exec-out", "screencap", "-p")
}

func (d *ADBDevice) Click(ctx context.Context, x, y int) error {
	_, err := d.Shell(ctx, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (d *ADBDevice) DoubleClick(ctx context.Context, x, y int) error {
	if err := d.Click(ctx, x, y); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return d.Click(ctx, x, y)
}

// LongClick holds a press for duration milliseconds using a zero-distance swipe.
func (d *ADBDevice) LongClick(ctx context.Context, x, y, duration int) error {
	if duration <= 0 {
		duration = 1000
	}
	sx, sy := strconv.Itoa(x), strconv.Itoa(y)
	_, err := d.Shell(ctx, "input", "swipe", sx, sy, sx, sy, strconv.Itoa(duration))
	return err
}

func (d *ADBDevice) Swipe(ctx context.Context, x1, y1, x2, y2, duration int) error {
	if duration <= 0 {
		duration = 300
	}
	_, err := d.Shell(ctx, "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1), strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.Itoa(duration))
	return err
}

// SendText types text into the focused field. `input text` needs spaces as
// %s and a handful of shell-special characters escaped on the device side.
func (d *ADBDevice) SendText(ctx context.Context, text string) error {
	_, err := d.Shell(ctx, "input", "text", escapeInputText(text))
	return err
}

var inputTextEscaper = strings.NewReplacer(
	`\`, `\\`,
	` `, `%s`,
	`"`, `\"`,
	`'`, `\'`,
	`&`, `\&`,
	`<`, `\<`,
	`>`, `\>`,
	`|`, `\|`,
	`;`, `\;`,
	`$`, `\$`,
	"`", "\\`",
	`(`, `\(`,
	`)`, `\)`,
)

func escapeInputText(text string) string {
	return inputTextEscaper.Replace(text)
}

// ClearText jumps to the end of the focused field and deletes backwards.
// There is no reliable single keyevent for "clear", so this sends a bounded
// burst of deletes in one shell round trip.
func (d *ADBDevice) ClearText(ctx context.Context) error {
	if _, err := d.Shell(ctx, "input", "keyevent", "KEYCODE_MOVE_END"); err != nil {
		return err
	}
	script := fmt.Sprintf("for i in $(seq 1 %d); do input keyevent KEYCODE_DEL; done", clearTextDeletes)
	_, err := d.Shell(ctx, script)
	return err
}

func (d *ADBDevice) Press(ctx context.Context, key string) error {
	code, err := ResolveKey(key)
	if err != nil {
		return err
	}
	_, err = d.Shell(ctx, "input", "keyevent", code)
	return err
}

// AppStart launches via `am start` when an explicit activity is given,
// otherwise pokes the launcher intent with monkey.
func (d *ADBDevice) AppStart(ctx context.Context, pkg, activity string) error {
	if activity != "" {
		_, err := d.Shell(ctx, "am", "start", "-n", pkg+"/"+activity)
		return err
	}
	_, err := d.Shell(ctx, "monkey", "-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	return err
}

func (d *ADBDevice) AppStop(ctx context.Context, pkg string) error {
	_, err := d.Shell(ctx, "am", "force-stop", pkg)
	return err
}

// SetOrientation disables auto-rotation and pins the given rotation.
func (d *ADBDevice) SetOrientation(ctx context.Context, rotation int) error {
	if rotation < 0 || rotation > 3 {
		return fmt.Errorf("rotation must be 0-3, got %d", rotation)
	}
	if _, err := d.Shell(ctx, "settings", "put", "system", "accelerometer_rotation", "0"); err != nil {
		return err
	}
	_, err := d.Shell(ctx, "settings", "put", "system", "user_rotation", strconv.Itoa(rotation))
	return err
}

func (d *ADBDevice) OpenNotification(ctx context.Context) error {
	_, err := d.Shell(ctx, "cmd", "statusbar", "expand-notifications")
	return err
}

func (d *ADBDevice) OpenQuickSettings(ctx context.Context) error {
	_, err := d.Shell(ctx, "cmd", "statusbar", "expand-settings")
	return err
}
