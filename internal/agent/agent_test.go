package agent

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/ref"
)

const settingsXML = `<hierarchy>
	<node class="android.widget.TextView" text="Settings" bounds="[0,100][1080,200]"/>
	<node class="android.widget.Button" resource-id="com.android.settings:id/search" text="Search" bounds="[100,300][500,400]" clickable="true"/>
</hierarchy>`

func newTestAgent(t *testing.T, fake *android.Fake) *Agent {
	t.Helper()
	connector := func(ctx context.Context, serial string) (android.Device, error) {
		return fake, nil
	}
	lister := func(ctx context.Context) ([]device.Info, error) {
		return []device.Info{{Serial: fake.DeviceSerial, State: "device"}}, nil
	}
	return NewWithBackend(DefaultConfig(), connector, lister, nil)
}

func lastCall(fake *android.Fake, prefix string) string {
	last := ""
	for _, c := range fake.CallNames() {
		if strings.HasPrefix(c, prefix) {
			last = c
		}
	}
	return last
}

func TestCaptureSnapshot(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Width:        1080, Height: 2400,
		Package:  "com.android.settings",
		Activity: ".Settings",
		Hierarchy: settingsXML,
	}
	a := newTestAgent(t, fake)

	snap, err := a.CaptureSnapshot(context.Background(), "serial1")
	if err != nil {
		t.Fatalf("CaptureSnapshot: %v", err)
	}
	if snap.Len() != 2 {
		t.Errorf("snapshot has %d elements, want 2", snap.Len())
	}
	if snap.Package != "com.android.settings" {
		t.Errorf("package = %q", snap.Package)
	}

	// Refs resolve under the same device key used at capture.
	x, y, err := a.Snapshots.Position(a.Devices.Key("serial1"), "e1")
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if x != 300 || y != 350 {
		t.Errorf("e1 center = (%d,%d), want (300,350)", x, y)
	}
}

func TestTap(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Width:        1080, Height: 2400,
		Hierarchy: settingsXML,
	}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	// Coordinates, no snapshot needed.
	x, y, err := a.Tap(ctx, "serial1", "", 10, 20, true)
	if err != nil || x != 10 || y != 20 {
		t.Fatalf("Tap by coords = (%d,%d,%v)", x, y, err)
	}
	if got := lastCall(fake, "click"); got != "click 10,20" {
		t.Errorf("device saw %q", got)
	}

	// Ref requires a prior snapshot.
	if _, _, err := a.Tap(ctx, "serial1", "e1", 0, 0, false); err == nil {
		t.Error("Tap by ref without a snapshot must fail")
	}
	var noSnap *ref.NoSnapshotError
	_, _, err = a.Tap(ctx, "serial1", "e1", 0, 0, false)
	if !errors.As(err, &noSnap) {
		t.Errorf("error = %v, want NoSnapshotError", err)
	}

	if _, err := a.CaptureSnapshot(ctx, "serial1"); err != nil {
		t.Fatal(err)
	}
	x, y, err = a.Tap(ctx, "serial1", "e1", 0, 0, false)
	if err != nil {
		t.Fatalf("Tap by ref: %v", err)
	}
	if x != 300 || y != 350 {
		t.Errorf("tapped (%d,%d), want element center (300,350)", x, y)
	}

	// Neither form is an error.
	if _, _, err := a.Tap(ctx, "serial1", "", 0, 0, false); err == nil {
		t.Error("Tap without target must fail")
	}
}

func TestTypeText(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Width:        1080, Height: 2400,
		Hierarchy: settingsXML,
	}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	if _, err := a.CaptureSnapshot(ctx, "serial1"); err != nil {
		t.Fatal(err)
	}
	if err := a.TypeText(ctx, "serial1", "e1", "hunter2!", true); err != nil {
		t.Fatalf("TypeText: %v", err)
	}

	// Focus click, clear, then send. The call log carries only the length.
	calls := fake.CallNames()
	want := []string{"click 300,350", "clear_text", "send_text 8"}
	matched := 0
	for _, c := range calls {
		if matched < len(want) && c == want[matched] {
			matched++
		}
	}
	if matched != len(want) {
		t.Errorf("calls = %v, want subsequence %v", calls, want)
	}
	for _, c := range calls {
		if strings.Contains(c, "hunter2") {
			t.Errorf("typed text leaked into call log: %q", c)
		}
	}
}

func TestUnlock(t *testing.T) {
	fake := &android.Fake{DeviceSerial: "serial1", Width: 1000, Height: 2000}
	a := newTestAgent(t, fake)

	if err := a.Unlock(context.Background(), "serial1"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got := lastCall(fake, "press"); got != "press wakeup" {
		t.Errorf("wake call = %q", got)
	}
	if got := lastCall(fake, "swipe"); got != "swipe 500,1500->500,500" {
		t.Errorf("keyguard swipe = %q", got)
	}
}

func TestAppStartValidatesPackage(t *testing.T) {
	fake := &android.Fake{DeviceSerial: "serial1"}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	if err := a.AppStart(ctx, "serial1", "com.example.app", ""); err != nil {
		t.Fatalf("AppStart: %v", err)
	}
	var malformed *ref.MalformedInputError
	err := a.AppStart(ctx, "serial1", "com.example; rm -rf /", "")
	if !errors.As(err, &malformed) {
		t.Errorf("error = %v, want MalformedInputError", err)
	}
	// The hostile package name never reaches the device.
	if got := lastCall(fake, "app_start"); got != "app_start com.example.app/" {
		t.Errorf("device saw %q", got)
	}
}

func TestCaptureScreenshot(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	fake := &android.Fake{DeviceSerial: "serial1", PNG: buf.Bytes()}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	full, err := a.CaptureScreenshot(ctx, "serial1", 1.0)
	if err != nil {
		t.Fatalf("CaptureScreenshot: %v", err)
	}
	if full.Width != 100 || full.Height != 200 {
		t.Errorf("full size = %dx%d", full.Width, full.Height)
	}

	half, err := a.CaptureScreenshot(ctx, "serial1", 0.5)
	if err != nil {
		t.Fatalf("scaled capture: %v", err)
	}
	if half.Width != 50 || half.Height != 100 {
		t.Errorf("scaled size = %dx%d, want 50x100", half.Width, half.Height)
	}
	decoded, err := png.Decode(bytes.NewReader(half.PNG))
	if err != nil {
		t.Fatalf("scaled output is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 50 {
		t.Errorf("decoded width = %d", decoded.Bounds().Dx())
	}

	if _, err := a.CaptureScreenshot(ctx, "serial1", 0.0); err == nil {
		t.Error("scale below 0.1 must be rejected")
	}
	if _, err := a.CaptureScreenshot(ctx, "serial1", 1.5); err == nil {
		t.Error("scale above 1.0 must be rejected")
	}
}

func TestWaitForElement(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Width:        1080, Height: 2400,
		Hierarchy: settingsXML,
	}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	text := "Search"
	el, err := a.WaitForElement(ctx, "serial1", ref.Criteria{Text: &text}, 2*time.Second)
	if err != nil {
		t.Fatalf("WaitForElement: %v", err)
	}
	if el.Ref != "e1" {
		t.Errorf("matched ref = %q", el.Ref)
	}

	missing := "No Such Button"
	if _, err := a.WaitForElement(ctx, "serial1", ref.Criteria{Text: &missing}, 20*time.Millisecond); err == nil {
		t.Error("WaitForElement must time out when nothing matches")
	}
}

func TestWaitForActivity(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Package:      "com.android.settings",
		Activity:     ".Settings",
	}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	if err := a.WaitForActivity(ctx, "serial1", "com.android.settings", "", 2*time.Second); err != nil {
		t.Fatalf("WaitForActivity: %v", err)
	}
	if err := a.WaitForActivity(ctx, "serial1", "com.android.settings", ".Settings", 2*time.Second); err != nil {
		t.Fatalf("WaitForActivity with activity: %v", err)
	}
	if err := a.WaitForActivity(ctx, "serial1", "com.other.app", "", 20*time.Millisecond); err == nil {
		t.Error("WaitForActivity must time out on the wrong app")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DROIDCLI_CACHE_TTL", "60")
	t.Setenv("DROIDCLI_MAX_DEVICES", "2")
	t.Setenv("DROIDCLI_STALE_SECONDS", "15")
	t.Setenv("DROIDCLI_HISTORY_DEPTH", "not-a-number")

	cfg := ConfigFromEnv()
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.MaxDevices != 2 {
		t.Errorf("MaxDevices = %d", cfg.MaxDevices)
	}
	if cfg.StaleAfter != 15*time.Second {
		t.Errorf("StaleAfter = %v", cfg.StaleAfter)
	}
	if cfg.HistoryDepth != ref.DefaultHistoryDepth {
		t.Errorf("bad env value must keep the default, got %d", cfg.HistoryDepth)
	}
}

func TestClose(t *testing.T) {
	fake := &android.Fake{
		DeviceSerial: "serial1",
		Width:        1080, Height: 2400,
		Hierarchy: settingsXML,
	}
	a := newTestAgent(t, fake)
	ctx := context.Background()

	if _, err := a.CaptureSnapshot(ctx, "serial1"); err != nil {
		t.Fatal(err)
	}
	a.Close()

	if a.Devices.CachedCount() != 0 {
		t.Error("Close must drop cached connections")
	}
	if _, _, err := a.Snapshots.Position(a.Devices.Key("serial1"), "e0"); err == nil {
		t.Error("Close must clear snapshot state")
	}
}
