package perf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
)

const (
	// maxSessions bounds memory held by monitoring sessions.
	maxSessions = 10
	// maxSamplesPerSession bounds memory held by one session.
	maxSamplesPerSession = 1000
	// defaultPollInterval between background samples.
	defaultPollInterval = time.Second
	// maxConsecutiveFailures stops a sampling loop that keeps failing.
	maxConsecutiveFailures = 10
	// stopJoinTimeout bounds how long StopSession waits for a loop.
	stopJoinTimeout = 2 * time.Second
)

// Session is one performance monitoring run for a package on a device.
type Session struct {
	ID        string    `yaml:"session_id" json:"session_id"`
	DeviceID  string    `yaml:"device_id"  json:"device_id"`
	Package   string    `yaml:"package"    json:"package"`
	StartedAt time.Time `yaml:"started_at" json:"started_at"`
	Samples   []Metrics `yaml:"samples"    json:"samples"`
	Running   bool      `yaml:"running"    json:"running"`
}

type sessionState struct {
	session Session
	stop    chan struct{}
	done    chan struct{}
}

// Monitor collects one-shot metrics and owns background sampling sessions.
type Monitor struct {
	devices *device.Manager
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// NewMonitor creates a performance monitor on top of the connection cache.
func NewMonitor(devices *device.Manager, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		devices:  devices,
		log:      log,
		sessions: make(map[string]*sessionState),
	}
}

// Sample collects one metrics snapshot for a package (empty = whatever app
// is foreground). Connection errors propagate; individual collector failures
// just leave their fields nil.
func (m *Monitor) Sample(ctx context.Context, deviceID, pkg string) (Metrics, error) {
	sample := Metrics{Timestamp: time.Now()}

	err := m.devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		target := pkg
		if target == "" {
			if current, _, err := dev.CurrentApp(ctx); err == nil {
				target = current
			}
		}
		m.collectCPUMemory(ctx, dev, target, &sample)
		m.collectBattery(ctx, dev, &sample)
		m.collectNetwork(ctx, dev, &sample)
		m.collectFPS(ctx, dev, &sample)
		return nil
	})
	if err != nil {
		return Metrics{}, err
	}
	return sample, nil
}

func (m *Monitor) collectCPUMemory(ctx context.Context, dev android.Device, pkg string, sample *Metrics) {
	if pkg == "" {
		return
	}
	if !ValidPackageName(pkg) {
		m.log.Warn("invalid package name rejected", zap.String("package", truncate(pkg, 50)))
		return
	}
	if out, err := dev.Shell(ctx, "top", "-n", "1", "-b", "|", "grep", "-F", pkg); err == nil {
		if cpu, mem, ok := parseTopOutput(out); ok {
			sample.CPUPercent = &cpu
			sample.MemoryPercent = &mem
		}
	}
	if out, err := dev.Shell(ctx, "dumpsys", "meminfo", pkg); err == nil {
		if mb, ok := parseMeminfo(out); ok {
			sample.MemoryMB = &mb
		}
	}
}

func (m *Monitor) collectBattery(ctx context.Context, dev android.Device, sample *Metrics) {
	out, err := dev.Shell(ctx, "dumpsys", "battery")
	if err != nil {
		return
	}
	level, temp, haveLevel, haveTemp := parseBattery(out)
	if haveLevel {
		sample.BatteryLevel = &level
	}
	if haveTemp {
		sample.BatteryTemperature = &temp
	}
}

func (m *Monitor) collectNetwork(ctx context.Context, dev android.Device, sample *Metrics) {
	out, err := dev.Shell(ctx, "cat", "/proc/net/dev")
	if err != nil {
		return
	}
	if rx, tx, ok := parseNetDev(out); ok {
		sample.NetworkRxBytes = &rx
		sample.NetworkTxBytes = &tx
	}
}

func (m *Monitor) collectFPS(ctx context.Context, dev android.Device, sample *Metrics) {
	if _, err := dev.Shell(ctx, "dumpsys", "SurfaceFlinger", "--latency-clear"); err != nil {
		return
	}
	time.Sleep(500 * time.Millisecond)
	out, err := dev.Shell(ctx, "dumpsys", "SurfaceFlinger", "--latency", "SurfaceView")
	if err != nil {
		return
	}
	if fps, ok := parseSurfaceFlinger(out); ok {
		sample.FPS = &fps
	}
}

// StartSession begins background sampling for a package on a device.
func (m *Monitor) StartSession(deviceID, pkg string, pollInterval time.Duration) (string, error) {
	if pkg != "" && !ValidPackageName(pkg) {
		return "", fmt.Errorf("invalid package name")
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	m.mu.Lock()
	if len(m.sessions) >= maxSessions {
		m.mu.Unlock()
		return "", fmt.Errorf("too many monitoring sessions (max %d)", maxSessions)
	}
	id := uuid.NewString()[:8]
	st := &sessionState{
		session: Session{
			ID:        id,
			DeviceID:  deviceID,
			Package:   pkg,
			StartedAt: time.Now(),
			Running:   true,
		},
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	m.sessions[id] = st
	m.mu.Unlock()

	go m.run(st, pollInterval)
	m.log.Info("performance monitoring started",
		zap.String("session", id), zap.String("device", deviceID), zap.String("package", pkg))
	return id, nil
}

// run is the background sampling loop, under the same stop/failure
// discipline as the watcher loops.
func (m *Monitor) run(st *sessionState, pollInterval time.Duration) {
	defer close(st.done)

	consecutive := 0
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
		}

		sample, err := m.Sample(context.Background(), st.session.DeviceID, st.session.Package)
		if err != nil {
			var connErr *device.ConnectionError
			if errors.As(err, &connErr) {
				m.log.Warn("device disconnected, stopping monitor",
					zap.String("session", st.session.ID))
				m.markStopped(st.session.ID)
				return
			}
			consecutive++
			m.log.Error("metrics sample failed",
				zap.String("session", st.session.ID),
				zap.Int("consecutive", consecutive),
				zap.Error(err))
			if consecutive >= maxConsecutiveFailures {
				m.log.Error("too many consecutive sampling failures, stopping monitor",
					zap.String("session", st.session.ID))
				m.markStopped(st.session.ID)
				return
			}
			continue
		}
		consecutive = 0

		m.mu.Lock()
		if len(st.session.Samples) < maxSamplesPerSession {
			st.session.Samples = append(st.session.Samples, sample)
		}
		m.mu.Unlock()
	}
}

func (m *Monitor) markStopped(id string) {
	m.mu.Lock()
	if st, ok := m.sessions[id]; ok {
		st.session.Running = false
	}
	m.mu.Unlock()
}

// StopSession ends background sampling and returns the completed session.
func (m *Monitor) StopSession(id string) (Session, error) {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	running := ok && st.session.Running
	m.mu.Unlock()
	if !ok {
		return Session{}, fmt.Errorf("unknown monitoring session: %q", id)
	}

	if running {
		close(st.stop)
		select {
		case <-st.done:
		case <-time.After(stopJoinTimeout):
			m.log.Warn("monitor loop did not stop in time", zap.String("session", id))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st.session.Running = false
	return st.session, nil
}

// StopAll ends every running session. Used at shutdown.
func (m *Monitor) StopAll() {
	m.mu.Lock()
	var ids []string
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.StopSession(id)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
