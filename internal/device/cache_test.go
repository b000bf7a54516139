package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/android"
)

// fakeBackend simulates the adb side: a fixed device listing plus a counting
// connector that can be told to fail.
type fakeBackend struct {
	mu       sync.Mutex
	serials  []string
	connects map[string]int
	failWith error
	devices  map[string]*android.Fake
}

func newFakeBackend(serials ...string) *fakeBackend {
	b := &fakeBackend{
		serials:  serials,
		connects: make(map[string]int),
		devices:  make(map[string]*android.Fake),
	}
	for _, s := range serials {
		b.devices[s] = &android.Fake{DeviceSerial: s}
	}
	return b
}

func (b *fakeBackend) connector(ctx context.Context, serial string) (android.Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connects[serial]++
	if b.failWith != nil {
		return nil, b.failWith
	}
	if dev, ok := b.devices[serial]; ok {
		return dev, nil
	}
	return nil, &NotFoundError{ID: serial}
}

func (b *fakeBackend) lister(ctx context.Context) ([]Info, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	infos := make([]Info, 0, len(b.serials))
	for _, s := range b.serials {
		infos = append(infos, Info{Serial: s, State: "device"})
	}
	return infos, nil
}

func (b *fakeBackend) connectCount(serial string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connects[serial]
}

func newTestManager(b *fakeBackend, ttl time.Duration, capacity int) (*Manager, *time.Time) {
	m := NewManager(b.connector, b.lister, ttl, capacity, nil)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func use(t *testing.T, m *Manager, deviceID string) {
	t.Helper()
	err := m.WithDevice(context.Background(), deviceID, func(android.Device) error { return nil })
	if err != nil {
		t.Fatalf("WithDevice(%q): %v", deviceID, err)
	}
}

func TestWithDevice_CacheHit(t *testing.T) {
	b := newFakeBackend("serial1")
	m, _ := newTestManager(b, time.Minute, 5)

	use(t, m, "serial1")
	use(t, m, "serial1")
	use(t, m, "serial1")

	if got := b.connectCount("serial1"); got != 1 {
		t.Errorf("connect called %d times, want 1", got)
	}
	if m.CachedCount() != 1 {
		t.Errorf("cached count = %d, want 1", m.CachedCount())
	}
}

func TestWithDevice_TTLExpiry(t *testing.T) {
	b := newFakeBackend("serial1")
	m, now := newTestManager(b, time.Minute, 5)

	use(t, m, "serial1")
	*now = now.Add(2 * time.Minute)
	use(t, m, "serial1")

	if got := b.connectCount("serial1"); got != 2 {
		t.Errorf("expired entry should reconnect; connect called %d times, want 2", got)
	}
}

func TestWithDevice_LRUEvictsExactVictim(t *testing.T) {
	b := newFakeBackend("a", "b", "c", "d")
	m, now := newTestManager(b, time.Hour, 3)

	use(t, m, "a")
	*now = now.Add(time.Second)
	use(t, m, "b")
	*now = now.Add(time.Second)
	use(t, m, "c")

	// Touch "a" so "b" becomes the least recently used.
	*now = now.Add(time.Second)
	use(t, m, "a")

	*now = now.Add(time.Second)
	use(t, m, "d")

	if m.CachedCount() != 3 {
		t.Fatalf("cached count = %d, want 3", m.CachedCount())
	}
	// "b" must be the one evicted: using it again reconnects.
	use(t, m, "b")
	if got := b.connectCount("b"); got != 2 {
		t.Errorf("LRU victim should be b; connect(b) called %d times, want 2", got)
	}
	// "a" was touched and must have survived.
	use(t, m, "a")
	if got := b.connectCount("a"); got != 1 {
		t.Errorf("a should have survived eviction; connect(a) called %d times, want 1", got)
	}
}

func TestWithDevice_ProbeFailureEvicts(t *testing.T) {
	b := newFakeBackend("serial1")
	m, _ := newTestManager(b, time.Minute, 5)

	use(t, m, "serial1")
	b.devices["serial1"].InfoErr = errors.New("device gone")

	err := m.WithDevice(context.Background(), "serial1", func(android.Device) error { return nil })
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %v", err)
	}
	if connErr.Reason != "connection lost" {
		t.Errorf("reason = %q, want %q", connErr.Reason, "connection lost")
	}
	if m.CachedCount() != 0 {
		t.Errorf("broken entry should be evicted, cached count = %d", m.CachedCount())
	}

	// Recovery: the next call reconnects fresh.
	b.devices["serial1"].InfoErr = nil
	use(t, m, "serial1")
	if got := b.connectCount("serial1"); got != 2 {
		t.Errorf("connect called %d times, want 2", got)
	}
}

func TestWithDevice_DefaultResolution(t *testing.T) {
	t.Run("zero devices", func(t *testing.T) {
		m, _ := newTestManager(newFakeBackend(), time.Minute, 5)
		err := m.WithDevice(context.Background(), "", func(android.Device) error { return nil })
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected *NotFoundError, got %v", err)
		}
	})

	t.Run("one device auto-selected", func(t *testing.T) {
		b := newFakeBackend("only-one")
		m, _ := newTestManager(b, time.Minute, 5)
		var serial string
		err := m.WithDevice(context.Background(), "", func(d android.Device) error {
			serial = d.Serial()
			return nil
		})
		if err != nil {
			t.Fatalf("WithDevice: %v", err)
		}
		if serial != "only-one" {
			t.Errorf("connected serial = %q, want only-one", serial)
		}
		if got := b.connectCount("only-one"); got != 1 {
			t.Errorf("connect called %d times, want 1", got)
		}
	})

	t.Run("multiple devices ambiguous", func(t *testing.T) {
		m, _ := newTestManager(newFakeBackend("a", "b"), time.Minute, 5)
		err := m.WithDevice(context.Background(), "", func(android.Device) error { return nil })
		var multiple *MultipleDevicesError
		if !errors.As(err, &multiple) {
			t.Fatalf("expected *MultipleDevicesError, got %v", err)
		}
		if len(multiple.Serials) != 2 {
			t.Errorf("error lists %d serials, want 2", len(multiple.Serials))
		}
	})
}

func TestWithDevice_InvalidID(t *testing.T) {
	m, _ := newTestManager(newFakeBackend("serial1"), time.Minute, 5)
	err := m.WithDevice(context.Background(), "serial1; rm -rf /", func(android.Device) error { return nil })
	var invalid *InvalidIDError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidIDError, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	b := newFakeBackend("a", "b")
	m, _ := newTestManager(b, time.Minute, 5)

	if err := m.Select(context.Background(), "b"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if m.Selected() != "b" {
		t.Errorf("Selected = %q, want b", m.Selected())
	}

	// The selection resolves omitted device IDs.
	var serial string
	err := m.WithDevice(context.Background(), "", func(d android.Device) error {
		serial = d.Serial()
		return nil
	})
	if err != nil {
		t.Fatalf("WithDevice: %v", err)
	}
	if serial != "b" {
		t.Errorf("default resolved to %q, want b", serial)
	}

	// Selecting an unknown device fails and keeps the old selection.
	err = m.Select(context.Background(), "nope")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if m.Selected() != "b" {
		t.Errorf("failed Select must not change the selection, got %q", m.Selected())
	}

	if err := m.Select(context.Background(), ""); err == nil {
		t.Error("empty ID must not be selectable")
	}
}

func TestKey(t *testing.T) {
	m, _ := newTestManager(newFakeBackend("a"), time.Minute, 5)
	if got := m.Key("serial9"); got != "serial9" {
		t.Errorf("Key(serial9) = %q", got)
	}
	if got := m.Key(""); got != DefaultKey {
		t.Errorf("Key(\"\") = %q, want %q", got, DefaultKey)
	}
	m.selMu.Lock()
	m.selected = "chosen"
	m.selMu.Unlock()
	if got := m.Key(""); got != "chosen" {
		t.Errorf("Key(\"\") with selection = %q, want chosen", got)
	}
}

func TestWithDevice_ConcurrentConnectsDeduped(t *testing.T) {
	var calls atomic.Int32
	slowConnector := func(ctx context.Context, serial string) (android.Device, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &android.Fake{DeviceSerial: serial}, nil
	}
	b := newFakeBackend("serial1")
	m := NewManager(slowConnector, b.lister, time.Minute, 5, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithDevice(context.Background(), "serial1", func(android.Device) error { return nil })
			if err != nil {
				t.Errorf("WithDevice: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("connect called %d times, want 1 (singleflight)", got)
	}
}

func TestDisconnect(t *testing.T) {
	b := newFakeBackend("a", "b")
	m, _ := newTestManager(b, time.Minute, 5)
	use(t, m, "a")
	use(t, m, "b")

	m.Disconnect("a")
	if m.CachedCount() != 1 {
		t.Errorf("cached count after Disconnect = %d, want 1", m.CachedCount())
	}
	m.DisconnectAll()
	if m.CachedCount() != 0 {
		t.Errorf("cached count after DisconnectAll = %d, want 0", m.CachedCount())
	}
}

func TestParseDeviceList(t *testing.T) {
	out := `List of devices attached
emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 transport_id:1
R58M123ABC             unauthorized transport_id:2
192.168.1.50:5555      offline
`
	devices := parseDeviceList(out)
	if len(devices) != 3 {
		t.Fatalf("parsed %d devices, want 3", len(devices))
	}
	first := devices[0]
	if first.Serial != "emulator-5554" || first.State != "device" {
		t.Errorf("first device = %+v", first)
	}
	if first.Model != "sdk_gphone64_x86_64" || first.TransportID != "1" {
		t.Errorf("first device metadata = %+v", first)
	}
	if !first.Available() {
		t.Error("state device should be available")
	}
	if devices[1].Available() || devices[2].Available() {
		t.Error("unauthorized/offline devices must not be available")
	}

	if got := parseDeviceList("List of devices attached\n"); len(got) != 0 {
		t.Errorf("header-only output should parse to no devices, got %d", len(got))
	}
}

func TestValidDeviceID(t *testing.T) {
	valid := []string{"", "emulator-5554", "R58M123ABC", "192.168.1.50:5555", "a.b_c-d:e"}
	for _, id := range valid {
		if !ValidDeviceID(id) {
			t.Errorf("ValidDeviceID(%q) = false, want true", id)
		}
	}
	invalid := []string{
		"serial with space",
		"serial;rm",
		"serial$(reboot)",
		"serial|x",
		"serial`x`",
		"serial\n",
		fmt.Sprintf("%0256d", 1),
	}
	for _, id := range invalid {
		if ValidDeviceID(id) {
			t.Errorf("ValidDeviceID(%q) = true, want false", id)
		}
	}
}
