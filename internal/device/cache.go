package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/droidcli/droidcli/internal/android"
)

const (
	// DefaultKey is the cache key used when no device is resolved.
	DefaultKey = "default"
	// DefaultTTL is how long an unused connection stays cached.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity is the maximum number of live handles kept.
	DefaultCapacity = 5
)

// Connector establishes a live connection to a device. An empty serial
// targets the single default device.
type Connector func(ctx context.Context, serial string) (android.Device, error)

type entry struct {
	dev      android.Device
	lastUsed time.Time
}

// Manager is the per-process device connection cache. It reuses expensive
// handles across calls while bounding total resource usage through TTL
// expiry and LRU capacity eviction.
//
// cacheMu guards the key->entry map and all structural mutations. The
// selected device has its own narrower lock since it changes independently
// and is read far more often than written. Neither lock is ever held across
// a blocking device call.
type Manager struct {
	connect  Connector
	list     Lister
	ttl      time.Duration
	capacity int
	log      *zap.Logger

	cacheMu sync.Mutex
	cache   map[string]*entry

	selMu    sync.Mutex
	selected string

	// group dedupes concurrent connect attempts for the same key so slow
	// connect I/O happens exactly once and never under cacheMu.
	group singleflight.Group

	now func() time.Time // test hook
}

// NewManager creates a connection cache. ttl <= 0 and capacity < 1 fall back
// to the defaults.
func NewManager(connect Connector, list Lister, ttl time.Duration, capacity int, log *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if log == nil {
		log = zap.NewNop()
	}
	if list == nil {
		list = ListDevices
	}
	return &Manager{
		connect:  connect,
		list:     list,
		ttl:      ttl,
		capacity: capacity,
		log:      log,
		cache:    make(map[string]*entry),
		now:      time.Now,
	}
}

// Devices lists currently connected devices. Listing failures degrade to an
// empty list so callers never crash on a missing adb binary.
func (m *Manager) Devices(ctx context.Context) []Info {
	devices, err := m.list(ctx)
	if err != nil {
		m.log.Error("device listing failed", zap.Error(err))
		return nil
	}
	return devices
}

func (m *Manager) availableSerials(ctx context.Context) []string {
	var serials []string
	for _, d := range m.Devices(ctx) {
		if d.Available() {
			serials = append(serials, d.Serial)
		}
	}
	return serials
}

// Select records a process-wide default device for callers that omit an
// explicit ID. The ID must pass format validation and appear in the current
// listing.
func (m *Manager) Select(ctx context.Context, id string) error {
	if id == "" || !ValidDeviceID(id) {
		return &InvalidIDError{ID: id}
	}
	found := false
	for _, s := range m.availableSerials(ctx) {
		if s == id {
			found = true
			break
		}
	}
	if !found {
		return &NotFoundError{ID: id}
	}

	m.selMu.Lock()
	m.selected = id
	m.selMu.Unlock()
	m.log.Info("device selected", zap.String("device", id))
	return nil
}

// Selected returns the currently selected device, or empty when none.
func (m *Manager) Selected() string {
	m.selMu.Lock()
	defer m.selMu.Unlock()
	return m.selected
}

// ResolveDeviceID returns the explicit ID when given, else the selected
// device, else empty (meaning "use the single default device").
func (m *Manager) ResolveDeviceID(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return m.Selected()
}

// Key returns the cache key (and snapshot namespace) for a device ID:
// the resolved ID, or the default sentinel when none resolves.
func (m *Manager) Key(explicit string) string {
	if id := m.ResolveDeviceID(explicit); id != "" {
		return id
	}
	return DefaultKey
}

// WithDevice acquires a validated live handle for the duration of fn. On a
// failed liveness probe the cache entry is evicted before the error returns,
// so the next acquisition reconnects fresh.
func (m *Manager) WithDevice(ctx context.Context, deviceID string, fn func(android.Device) error) error {
	resolved := m.ResolveDeviceID(deviceID)
	if !ValidDeviceID(resolved) {
		return &InvalidIDError{ID: resolved}
	}
	key := resolved
	if key == "" {
		key = DefaultKey
	}

	dev, err := m.acquire(ctx, resolved, key)
	if err != nil {
		return err
	}

	// Liveness probe, outside any lock.
	if _, err := dev.Info(ctx); err != nil {
		m.evict(key)
		m.log.Warn("device connection lost, cache invalidated",
			zap.String("key", key), zap.Error(err))
		return &ConnectionError{Key: key, Reason: "connection lost", Err: err}
	}

	return fn(dev)
}

// acquire returns a cached handle or connects a new one. The lock is
// released before connect I/O and retaken only to store the result.
func (m *Manager) acquire(ctx context.Context, resolved, key string) (android.Device, error) {
	m.cacheMu.Lock()
	m.purgeExpiredLocked()
	if e, ok := m.cache[key]; ok {
		e.lastUsed = m.now()
		dev := e.dev
		m.cacheMu.Unlock()
		return dev, nil
	}
	m.cacheMu.Unlock()

	// Resolve the default sentinel against what is actually connected:
	// zero devices is an error, one is auto-selected, more than one needs
	// an explicit selection.
	serial := resolved
	if resolved == "" {
		avail := m.availableSerials(ctx)
		switch len(avail) {
		case 0:
			return nil, &NotFoundError{}
		case 1:
			serial = avail[0]
		default:
			return nil, &MultipleDevicesError{Serials: avail}
		}
	}

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		m.log.Info("connecting to device", zap.String("key", key))
		return m.connect(ctx, serial)
	})
	if err != nil {
		if IsDeviceError(err) {
			return nil, err
		}
		m.log.Error("device connection failed", zap.String("key", key), zap.Error(err))
		return nil, &ConnectionError{Key: key, Reason: err.Error(), Err: err}
	}
	dev := v.(android.Device)

	m.cacheMu.Lock()
	if e, ok := m.cache[key]; ok {
		// Another caller stored the shared singleflight result first.
		e.lastUsed = m.now()
	} else {
		m.purgeExpiredLocked()
		m.evictLRULocked()
		m.cache[key] = &entry{dev: dev, lastUsed: m.now()}
	}
	m.cacheMu.Unlock()
	return dev, nil
}

// purgeExpiredLocked removes entries unused for longer than the TTL.
// Callers must hold cacheMu.
func (m *Manager) purgeExpiredLocked() {
	cutoff := m.now().Add(-m.ttl)
	for key, e := range m.cache {
		if e.lastUsed.Before(cutoff) {
			m.log.Debug("cache entry expired", zap.String("key", key))
			delete(m.cache, key)
		}
	}
}

// evictLRULocked makes room for one new entry by evicting least-recently-used
// entries while at or over capacity. Callers must hold cacheMu.
func (m *Manager) evictLRULocked() {
	for len(m.cache) >= m.capacity {
		oldestKey := ""
		var oldest time.Time
		for key, e := range m.cache {
			if oldestKey == "" || e.lastUsed.Before(oldest) {
				oldestKey = key
				oldest = e.lastUsed
			}
		}
		m.log.Debug("evicting least-recently-used entry", zap.String("key", oldestKey))
		delete(m.cache, oldestKey)
	}
}

func (m *Manager) evict(key string) {
	m.cacheMu.Lock()
	delete(m.cache, key)
	m.cacheMu.Unlock()
}

// Disconnect removes one device from the cache, bypassing the TTL.
func (m *Manager) Disconnect(deviceID string) {
	key := deviceID
	if key == "" {
		key = DefaultKey
	}
	m.evict(key)
	m.log.Info("device disconnected", zap.String("key", key))
}

// DisconnectAll drops every cached connection.
func (m *Manager) DisconnectAll() {
	m.cacheMu.Lock()
	m.cache = make(map[string]*entry)
	m.cacheMu.Unlock()
	m.log.Info("all devices disconnected")
}

// CachedCount returns the number of live cached handles.
func (m *Manager) CachedCount() int {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	return len(m.cache)
}
