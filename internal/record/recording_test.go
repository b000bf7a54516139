package record

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
)

func newTestManager(t *testing.T, fake *android.Fake) *Manager {
	t.Helper()
	connector := func(ctx context.Context, serial string) (android.Device, error) {
		return fake, nil
	}
	lister := func(ctx context.Context) ([]device.Info, error) {
		return []device.Info{{Serial: fake.DeviceSerial, State: "device"}}, nil
	}
	return NewManager(device.NewManager(connector, lister, time.Minute, 5, nil), nil)
}

func TestStartAddStop(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})

	if _, err := m.Start("serial1", ""); err == nil {
		t.Error("empty name must be rejected")
	}

	rec, err := m.Start("serial1", "login flow")
	require.NoError(t, err)
	if rec.ID == "" || rec.Name != "login flow" {
		t.Fatalf("recording = %+v", rec)
	}

	// One active recording per device.
	if _, err := m.Start("serial1", "second"); err == nil {
		t.Error("second Start on the same device must fail")
	}

	require.NoError(t, m.AddEvent("serial1", Event{Type: "tap", X: 100, Y: 200}))
	require.NoError(t, m.AddEvent("serial1", Event{Type: "type", Text: "hello", DelayMs: 50}))
	require.NoError(t, m.AddEvent("serial1", Event{Type: "key", Key: "enter"}))

	stopped, err := m.Stop("serial1")
	require.NoError(t, err)
	if len(stopped.Events) != 3 {
		t.Fatalf("captured %d events, want 3", len(stopped.Events))
	}

	// No longer active.
	if err := m.AddEvent("serial1", Event{Type: "tap"}); err == nil {
		t.Error("AddEvent after Stop must fail")
	}
	if _, err := m.Stop("serial1"); err == nil {
		t.Error("second Stop must fail")
	}
}

func TestAddEvent_Validation(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})
	_, err := m.Start("serial1", "r")
	require.NoError(t, err)

	tests := []struct {
		name    string
		ev      Event
		wantErr bool
	}{
		{"tap", Event{Type: "tap", X: 1, Y: 2}, false},
		{"swipe", Event{Type: "swipe", X: 1, Y: 2, X2: 3, Y2: 4, DurationMs: 100}, false},
		{"long press", Event{Type: "long_press", X: 1, Y: 2, DurationMs: 800}, false},
		{"type without text", Event{Type: "type"}, true},
		{"key with bad name", Event{Type: "key", Key: "frobnicate"}, true},
		{"unknown type", Event{Type: "pinch"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.AddEvent("serial1", tt.ev)
			if (err != nil) != tt.wantErr {
				t.Errorf("AddEvent(%+v) error = %v, wantErr %v", tt.ev, err, tt.wantErr)
			}
		})
	}
}

func TestListNewestFirstAndDelete(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})

	first, _ := m.Start("serial1", "first")
	m.Stop("serial1")
	m.Start("serial1", "second")
	m.Stop("serial1")

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("listed %d recordings, want 2", len(list))
	}
	if list[0].Name != "second" {
		t.Errorf("newest first, got %q", list[0].Name)
	}

	if !m.Delete(first.ID) {
		t.Error("Delete should report existing recording")
	}
	if m.Delete(first.ID) {
		t.Error("second Delete should report missing recording")
	}
	if _, err := m.Get(first.ID); err == nil {
		t.Error("Get after Delete must fail")
	}
}

func TestDeleteClearsActiveCapture(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})
	rec, _ := m.Start("serial1", "doomed")
	m.Delete(rec.ID)

	// The device must be free to start a new capture.
	if _, err := m.Start("serial1", "fresh"); err != nil {
		t.Fatalf("Start after deleting active recording: %v", err)
	}
}

func TestPlay(t *testing.T) {
	fake := &android.Fake{DeviceSerial: "serial1"}
	m := newTestManager(t, fake)

	rec, _ := m.Start("serial1", "flow")
	m.AddEvent("serial1", Event{Type: "tap", X: 100, Y: 200})
	m.AddEvent("serial1", Event{Type: "swipe", X: 0, Y: 0, X2: 50, Y2: 50, DurationMs: 10, DelayMs: 5})
	m.AddEvent("serial1", Event{Type: "key", Key: "back"})
	m.Stop("serial1")

	executed, err := m.Play(context.Background(), rec.ID, 10.0)
	require.NoError(t, err)
	if executed != 3 {
		t.Fatalf("executed %d events, want 3", executed)
	}

	calls := fake.CallNames()
	want := []string{"click 100,200", "swipe 0,0->50,50", "press back"}
	matched := 0
	for _, c := range calls {
		if matched < len(want) && c == want[matched] {
			matched++
		}
	}
	if matched != len(want) {
		t.Errorf("calls = %v, want subsequence %v", calls, want)
	}

	if _, err := m.Play(context.Background(), "nope", 1.0); err == nil {
		t.Error("Play with unknown ID must fail")
	}
}

func TestExportImport(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})

	rec, _ := m.Start("serial1", "flow")
	m.AddEvent("serial1", Event{Type: "tap", X: 1, Y: 2})
	m.Stop("serial1")

	data, err := m.Export(rec.ID)
	require.NoError(t, err)

	imported, err := m.Import(data)
	require.NoError(t, err)
	if imported.ID == rec.ID {
		t.Error("imported recording must get a fresh ID")
	}
	if imported.Name != "flow" || len(imported.Events) != 1 {
		t.Errorf("imported = %+v", imported)
	}

	if _, err := m.Import([]byte("{not json")); err == nil {
		t.Error("Import with malformed JSON must fail")
	}
	if _, err := m.Import([]byte(`{"name":""}`)); err == nil {
		t.Error("Import without a name must fail")
	}
	if _, err := m.Import([]byte(`{"name":"x","events":[{"type":"pinch"}]}`)); err == nil {
		t.Error("Import with invalid events must fail")
	}
}

func TestReturnedRecordingsAreCopies(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})

	rec, _ := m.Start("serial1", "flow")
	require.NoError(t, m.AddEvent("serial1", Event{Type: "tap", X: 1, Y: 2}))

	got, err := m.Get(rec.ID)
	require.NoError(t, err)
	got.Events[0].X = 999
	got.Events = append(got.Events, Event{Type: "tap"})

	fresh, err := m.Get(rec.ID)
	require.NoError(t, err)
	if len(fresh.Events) != 1 || fresh.Events[0].X != 1 {
		t.Errorf("mutating a returned recording leaked into the manager: %+v", fresh.Events)
	}

	list := m.List()
	list[0].Events[0].Y = 999
	fresh, _ = m.Get(rec.ID)
	if fresh.Events[0].Y != 2 {
		t.Error("mutating a listed recording leaked into the manager")
	}
}

func TestPlayConcurrentWithAddEvent(t *testing.T) {
	fake := &android.Fake{DeviceSerial: "serial1"}
	m := newTestManager(t, fake)

	rec, _ := m.Start("serial1", "busy")
	for i := 0; i < 50; i++ {
		require.NoError(t, m.AddEvent("serial1", Event{Type: "tap", X: i, Y: i, DelayMs: 1}))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			m.AddEvent("serial1", Event{Type: "tap", X: i, Y: i})
		}
	}()
	var executed int
	var playErr error
	go func() {
		defer wg.Done()
		executed, playErr = m.Play(context.Background(), rec.ID, 100)
	}()
	wg.Wait()

	if playErr != nil {
		t.Fatalf("Play: %v", playErr)
	}
	// The replay works off the copy taken when Play started.
	if executed < 50 || executed > 100 {
		t.Errorf("executed %d events, want between 50 and 100", executed)
	}
}

func TestMaxEvents(t *testing.T) {
	m := newTestManager(t, &android.Fake{DeviceSerial: "serial1"})
	m.Start("serial1", "big")
	for i := 0; i < maxEventsPerRecording; i++ {
		if err := m.AddEvent("serial1", Event{Type: "tap", X: i, Y: i}); err != nil {
			t.Fatalf("event %d rejected: %v", i, err)
		}
	}
	if err := m.AddEvent("serial1", Event{Type: "tap"}); err == nil {
		t.Error("event past the cap must be rejected")
	}
}
