package ref

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultStaleAfter is the default maximum snapshot age for ref resolution.
	DefaultStaleAfter = 30 * time.Second
	// DefaultHistoryDepth is the default number of snapshots kept per device.
	DefaultHistoryDepth = 5
	// refSampleSize bounds the valid-ref sample attached to not-found errors.
	refSampleSize = 10
)

// Manager owns per-device snapshot history and resolves refs against the
// current snapshot. It is the sole mutator of its state and safe for
// concurrent use; devices are independent of each other.
type Manager struct {
	mu         sync.Mutex
	history    map[string][]*Snapshot // per device, oldest first
	current    map[string]string      // device -> current snapshot ID
	maxHistory int
	staleAfter time.Duration
	log        *zap.Logger

	now func() time.Time // test hook
}

// NewManager creates a snapshot manager. maxHistory below 1 is clamped to 1;
// staleAfter of 0 or less falls back to DefaultStaleAfter.
func NewManager(maxHistory int, staleAfter time.Duration, log *zap.Logger) *Manager {
	if maxHistory < 1 {
		maxHistory = 1
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		history:    make(map[string][]*Snapshot),
		current:    make(map[string]string),
		maxHistory: maxHistory,
		staleAfter: staleAfter,
		log:        log,
		now:        time.Now,
	}
}

// CreateSnapshot parses a raw hierarchy dump, stores the result as the
// device's new current snapshot, and evicts the oldest history entry when
// over capacity. Concurrent creations for the same device are serialized;
// current always points at the most recently completed creation.
func (m *Manager) CreateSnapshot(deviceID, xmlContent, pkg, activity string, width, height int) (*Snapshot, error) {
	// Parsing is pure and can run outside the lock.
	elements, err := ParseHierarchy(xmlContent)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := newSnapshot(deviceID, pkg, activity, width, height, elements, xmlContent, m.now())
	hist := append(m.history[deviceID], snap)
	for len(hist) > m.maxHistory {
		hist = hist[1:]
	}
	m.history[deviceID] = hist
	m.current[deviceID] = snap.ID

	m.log.Debug("snapshot created",
		zap.String("device", deviceID),
		zap.String("snapshot", snap.ID),
		zap.Int("elements", snap.Len()))
	return snap, nil
}

// Current returns the device's current snapshot, or nil when none exists.
func (m *Manager) Current(deviceID string) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked(deviceID)
}

func (m *Manager) currentLocked(deviceID string) *Snapshot {
	id, ok := m.current[deviceID]
	if !ok {
		return nil
	}
	for _, s := range m.history[deviceID] {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ResolveRef resolves a ref against the device's current snapshot.
// Staleness is checked before presence, so a stale snapshot reports
// *StaleSnapshotError even when the ref would otherwise resolve.
// maxStale of 0 or less uses the manager default.
func (m *Manager) ResolveRef(deviceID, r string, validateStaleness bool, maxStale time.Duration) (*ElementDescriptor, error) {
	m.mu.Lock()
	snap := m.currentLocked(deviceID)
	m.mu.Unlock()

	if snap == nil {
		return nil, &NoSnapshotError{DeviceID: deviceID}
	}
	if validateStaleness {
		if maxStale <= 0 {
			maxStale = m.staleAfter
		}
		if age := snap.Age(m.now()); age > maxStale {
			return nil, &StaleSnapshotError{Ref: r, Age: age, MaxAge: maxStale}
		}
	}
	el, ok := snap.Element(r)
	if !ok {
		return nil, &RefNotFoundError{Ref: r, Available: snap.Refs(refSampleSize)}
	}
	return el, nil
}

// Position returns the center point of the element a ref resolves to.
func (m *Manager) Position(deviceID, r string) (int, int, error) {
	el, err := m.ResolveRef(deviceID, r, true, 0)
	if err != nil {
		return 0, 0, err
	}
	x, y := el.Center()
	return x, y, nil
}

// FindElements returns all descriptors in the current snapshot matching the
// criteria. A device with no snapshot yields an empty result, not an error.
func (m *Manager) FindElements(deviceID string, c Criteria) []*ElementDescriptor {
	m.mu.Lock()
	snap := m.currentLocked(deviceID)
	m.mu.Unlock()

	if snap == nil {
		return nil
	}
	return snap.Find(c)
}

// Invalidate drops all snapshot state for one device.
func (m *Manager) Invalidate(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, deviceID)
	delete(m.current, deviceID)
}

// ClearAll drops all snapshot state for all devices.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = make(map[string][]*Snapshot)
	m.current = make(map[string]string)
}
