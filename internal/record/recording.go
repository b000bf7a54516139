// Package record captures and replays gesture sequences: taps, swipes,
// typed text, and key presses with per-event delays.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
)

// Event is one recorded gesture.
type Event struct {
	Type       string `yaml:"type"                  json:"type"` // "tap", "long_press", "swipe", "type", "key"
	X          int    `yaml:"x,omitempty"           json:"x,omitempty"`
	Y          int    `yaml:"y,omitempty"           json:"y,omitempty"`
	X2         int    `yaml:"x2,omitempty"          json:"x2,omitempty"`
	Y2         int    `yaml:"y2,omitempty"          json:"y2,omitempty"`
	Text       string `yaml:"text,omitempty"        json:"text,omitempty"`
	Key        string `yaml:"key,omitempty"         json:"key,omitempty"`
	DurationMs int    `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	DelayMs    int    `yaml:"delay_ms,omitempty"    json:"delay_ms,omitempty"` // pause before the event
}

// Recording is a named, ordered gesture sequence bound to a device.
type Recording struct {
	ID        string    `yaml:"id"         json:"id"`
	Name      string    `yaml:"name"       json:"name"`
	DeviceID  string    `yaml:"device_id"  json:"device_id"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	Events    []Event   `yaml:"events"     json:"events"`
}

// maxEventsPerRecording bounds memory per recording.
const maxEventsPerRecording = 1000

// clone returns an independent copy. Callers only ever see copies; the
// stored recording stays private to the manager so AddEvent never races a
// reader.
func (r *Recording) clone() Recording {
	cp := *r
	cp.Events = append([]Event(nil), r.Events...)
	return cp
}

// Manager owns in-memory recordings and replays them through the connection
// cache.
type Manager struct {
	devices *device.Manager
	log     *zap.Logger

	mu         sync.Mutex
	recordings map[string]*Recording
	active     map[string]string // device key -> recording ID being captured
}

// NewManager creates a recording manager.
func NewManager(devices *device.Manager, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		devices:    devices,
		log:        log,
		recordings: make(map[string]*Recording),
		active:     make(map[string]string),
	}
}

// Start begins capturing a new named recording for a device.
func (m *Manager) Start(deviceID, name string) (Recording, error) {
	if name == "" {
		return Recording{}, fmt.Errorf("recording name must not be empty")
	}

	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.active[key]; ok {
		return Recording{}, fmt.Errorf("recording %q already active for this device", m.recordings[id].Name)
	}
	rec := &Recording{
		ID:        uuid.NewString()[:8],
		Name:      name,
		DeviceID:  deviceID,
		CreatedAt: time.Now(),
	}
	m.recordings[rec.ID] = rec
	m.active[key] = rec.ID
	m.log.Info("recording started", zap.String("device", key), zap.String("name", name))
	return rec.clone(), nil
}

// AddEvent appends a gesture to the device's active recording.
func (m *Manager) AddEvent(deviceID string, ev Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}

	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[key]
	if !ok {
		return fmt.Errorf("no active recording for device %q", key)
	}
	rec := m.recordings[id]
	if len(rec.Events) >= maxEventsPerRecording {
		return fmt.Errorf("recording %q is full (max %d events)", rec.Name, maxEventsPerRecording)
	}
	rec.Events = append(rec.Events, ev)
	return nil
}

func validateEvent(ev Event) error {
	switch ev.Type {
	case "tap", "long_press":
		return nil
	case "swipe":
		return nil
	case "type":
		if ev.Text == "" {
			return fmt.Errorf("type event needs text")
		}
		return nil
	case "key":
		_, err := android.ResolveKey(ev.Key)
		return err
	default:
		return fmt.Errorf("unknown event type: %q", ev.Type)
	}
}

// Stop finishes the device's active recording and returns it.
func (m *Manager) Stop(deviceID string) (Recording, error) {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[key]
	if !ok {
		return Recording{}, fmt.Errorf("no active recording for device %q", key)
	}
	delete(m.active, key)
	rec := m.recordings[id]
	m.log.Info("recording stopped",
		zap.String("device", key),
		zap.String("name", rec.Name),
		zap.Int("events", len(rec.Events)))
	return rec.clone(), nil
}

// Get returns a copy of a recording by ID.
func (m *Manager) Get(id string) (Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recordings[id]
	if !ok {
		return Recording{}, fmt.Errorf("unknown recording: %q", id)
	}
	return rec.clone(), nil
}

// List returns copies of all recordings, newest first.
func (m *Manager) List() []Recording {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Recording, 0, len(m.recordings))
	for _, rec := range m.recordings {
		out = append(out, rec.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Delete removes a recording and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recordings[id]; !ok {
		return false
	}
	delete(m.recordings, id)
	for dev, active := range m.active {
		if active == id {
			delete(m.active, dev)
		}
	}
	return true
}

// Play replays a recording against its device. speed scales the recorded
// delays (2.0 = twice as fast). Returns the number of events executed. The
// replay works off the copy taken at call time; events added concurrently
// are not picked up mid-run.
func (m *Manager) Play(ctx context.Context, id string, speed float64) (int, error) {
	rec, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	if speed <= 0 {
		speed = 1.0
	}

	executed := 0
	err = m.devices.WithDevice(ctx, rec.DeviceID, func(dev android.Device) error {
		for _, ev := range rec.Events {
			if ev.DelayMs > 0 {
				delay := time.Duration(float64(ev.DelayMs)/speed) * time.Millisecond
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(delay):
				}
			}
			if err := playEvent(ctx, dev, ev); err != nil {
				return fmt.Errorf("event %d (%s): %w", executed, ev.Type, err)
			}
			executed++
		}
		return nil
	})
	if err != nil {
		return executed, err
	}
	m.log.Info("recording played", zap.String("id", id), zap.Int("events", executed))
	return executed, nil
}

func playEvent(ctx context.Context, dev android.Device, ev Event) error {
	switch ev.Type {
	case "tap":
		return dev.Click(ctx, ev.X, ev.Y)
	case "long_press":
		return dev.LongClick(ctx, ev.X, ev.Y, ev.DurationMs)
	case "swipe":
		return dev.Swipe(ctx, ev.X, ev.Y, ev.X2, ev.Y2, ev.DurationMs)
	case "type":
		return dev.SendText(ctx, ev.Text)
	case "key":
		return dev.Press(ctx, ev.Key)
	}
	return fmt.Errorf("unknown event type: %q", ev.Type)
}

// Export serializes a recording to JSON.
func (m *Manager) Export(id string) ([]byte, error) {
	rec, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(rec, "", "  ")
}

// Import loads a previously exported recording under a fresh ID.
func (m *Manager) Import(data []byte) (Recording, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recording{}, fmt.Errorf("decode recording: %w", err)
	}
	if rec.Name == "" {
		return Recording{}, fmt.Errorf("imported recording has no name")
	}
	for _, ev := range rec.Events {
		if err := validateEvent(ev); err != nil {
			return Recording{}, err
		}
	}
	rec.ID = uuid.NewString()[:8]

	m.mu.Lock()
	m.recordings[rec.ID] = &rec
	m.mu.Unlock()
	return rec.clone(), nil
}
