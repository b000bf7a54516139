// Package watcher provides automatic popup/dialog handling: named rules are
// checked against the device UI by a background loop and trigger an action
// (dismiss, press a key) when all their conditions match.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/droidcli/droidcli/internal/android"
	"github.com/droidcli/droidcli/internal/device"
	"github.com/droidcli/droidcli/internal/ref"
)

const (
	// DefaultPollInterval is the pause between background checks.
	DefaultPollInterval = time.Second
	// maxConsecutiveFailures stops a loop that keeps failing; a dead
	// device is not worth retrying forever.
	maxConsecutiveFailures = 10
	// stopJoinTimeout bounds how long Stop waits for a loop to exit.
	stopJoinTimeout = 2 * time.Second
)

// Condition is one trigger predicate of a rule.
type Condition struct {
	Type  string `yaml:"type"  json:"type"` // "text", "text_contains", "resource_id", "resource_id_contains"
	Value string `yaml:"value" json:"value"`
}

// criteria converts a condition into element-matching criteria.
func (c Condition) criteria() (ref.Criteria, error) {
	switch c.Type {
	case "text":
		return ref.Criteria{Text: &c.Value}, nil
	case "text_contains":
		return ref.Criteria{TextContains: &c.Value}, nil
	case "resource_id":
		return ref.Criteria{ResourceID: &c.Value}, nil
	case "resource_id_contains":
		return ref.Criteria{ResourceIDContains: &c.Value}, nil
	default:
		return ref.Criteria{}, fmt.Errorf("unknown condition type: %q", c.Type)
	}
}

// Rule defines trigger conditions and the action to run when they all match.
type Rule struct {
	Name          string      `yaml:"name"                     json:"name"`
	Conditions    []Condition `yaml:"conditions"               json:"conditions"`
	Action        string      `yaml:"action"                   json:"action"` // "click", "back", "home", "press:<key>"
	ActionTarget  int         `yaml:"action_target"            json:"action_target"` // condition index to click, -1 = first
	Priority      int         `yaml:"priority"                 json:"priority"`
	Enabled       bool        `yaml:"enabled"                  json:"enabled"`
	TriggerCount  int         `yaml:"trigger_count"            json:"trigger_count"`
	LastTriggered time.Time   `yaml:"last_triggered,omitempty" json:"last_triggered,omitempty"`
}

// Summary reports watcher activity when monitoring stops.
type Summary struct {
	TotalWatchers int           `yaml:"total_watchers" json:"total_watchers"`
	Triggers      []TriggerStat `yaml:"triggers,omitempty" json:"triggers,omitempty"`
}

// TriggerStat is per-rule activity in a Summary.
type TriggerStat struct {
	Name          string    `yaml:"name"           json:"name"`
	TriggerCount  int       `yaml:"trigger_count"  json:"trigger_count"`
	LastTriggered time.Time `yaml:"last_triggered" json:"last_triggered"`
}

type loop struct {
	stop chan struct{}
	done chan struct{}
}

// Manager owns watcher rules and the background loops that evaluate them.
type Manager struct {
	devices *device.Manager
	log     *zap.Logger

	mu    sync.Mutex
	rules map[string]map[string]*Rule // device key -> rule name -> rule
	loops map[string]*loop
}

// NewManager creates a watcher manager on top of the connection cache.
func NewManager(devices *device.Manager, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		devices: devices,
		log:     log,
		rules:   make(map[string]map[string]*Rule),
		loops:   make(map[string]*loop),
	}
}

// Add registers a rule for a device, replacing any rule with the same name.
// The returned rule is a copy; the stored one is mutated by running loops
// under the manager lock and never escapes.
func (m *Manager) Add(deviceID, name string, conditions []Condition, action string, actionTarget, priority int) (Rule, error) {
	if name == "" {
		return Rule{}, fmt.Errorf("watcher name must not be empty")
	}
	if len(conditions) == 0 {
		return Rule{}, fmt.Errorf("watcher %q needs at least one condition", name)
	}
	for _, c := range conditions {
		if _, err := c.criteria(); err != nil {
			return Rule{}, err
		}
	}
	if err := validateAction(action); err != nil {
		return Rule{}, err
	}

	rule := &Rule{
		Name:         name,
		Conditions:   conditions,
		Action:       action,
		ActionTarget: actionTarget,
		Priority:     priority,
		Enabled:      true,
	}

	key := m.devices.Key(deviceID)
	m.mu.Lock()
	if m.rules[key] == nil {
		m.rules[key] = make(map[string]*Rule)
	}
	m.rules[key][name] = rule
	m.mu.Unlock()

	m.log.Info("watcher added", zap.String("device", key), zap.String("name", name))
	return *rule, nil
}

func validateAction(action string) error {
	switch action {
	case "click", "back", "home":
		return nil
	}
	if key, ok := strings.CutPrefix(action, "press:"); ok {
		_, err := android.ResolveKey(key)
		return err
	}
	return fmt.Errorf("unknown watcher action: %q", action)
}

// Remove deletes a rule by name and reports whether it existed.
func (m *Manager) Remove(deviceID, name string) bool {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if rules, ok := m.rules[key]; ok {
		if _, ok := rules[name]; ok {
			delete(rules, name)
			return true
		}
	}
	return false
}

// List returns copies of all rules for a device, highest priority first.
func (m *Manager) List(deviceID string) []Rule {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Rule
	for _, r := range m.rules[key] {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Running reports whether a background loop is active for the device.
func (m *Manager) Running(deviceID string) bool {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loops[key]
	return ok
}

// Start launches the background loop for a device. Returns false when a
// loop is already running.
func (m *Manager) Start(deviceID string, pollInterval time.Duration) (bool, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	key := m.devices.Key(deviceID)
	m.mu.Lock()
	if _, ok := m.loops[key]; ok {
		m.mu.Unlock()
		return false, nil
	}
	l := &loop{stop: make(chan struct{}), done: make(chan struct{})}
	m.loops[key] = l
	m.mu.Unlock()

	go m.run(deviceID, pollInterval, l)
	m.log.Info("watcher monitoring started",
		zap.String("device", key), zap.Duration("interval", pollInterval))
	return true, nil
}

// Stop signals the device's loop to finish and waits for it with a bounded
// join, then returns an activity summary.
func (m *Manager) Stop(deviceID string) Summary {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	l := m.loops[key]
	delete(m.loops, key)
	m.mu.Unlock()

	if l != nil {
		close(l.stop)
		select {
		case <-l.done:
		case <-time.After(stopJoinTimeout):
			m.log.Warn("watcher loop did not stop in time", zap.String("device", key))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	summary := Summary{TotalWatchers: len(m.rules[key])}
	for _, r := range m.rules[key] {
		if r.TriggerCount > 0 {
			summary.Triggers = append(summary.Triggers, TriggerStat{
				Name:          r.Name,
				TriggerCount:  r.TriggerCount,
				LastTriggered: r.LastTriggered,
			})
		}
	}
	sort.Slice(summary.Triggers, func(i, j int) bool {
		return summary.Triggers[i].Name < summary.Triggers[j].Name
	})
	return summary
}

// StopAll stops every running loop. Used at shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	var ids []string
	for id := range m.loops {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.Stop(id)
	}
}

// run is the background polling loop. It checks the stop signal once per
// cycle, stops immediately on a connection error, and gives up after too
// many consecutive failures of any other kind.
func (m *Manager) run(deviceID string, pollInterval time.Duration, l *loop) {
	defer close(l.done)

	consecutive := 0
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			m.log.Info("watcher loop stopped", zap.String("device", deviceID))
			return
		case <-ticker.C:
		}

		_, err := m.TriggerOnce(context.Background(), deviceID)
		if err == nil {
			consecutive = 0
			continue
		}
		var connErr *device.ConnectionError
		if errors.As(err, &connErr) {
			m.log.Warn("device disconnected, stopping watcher", zap.String("device", deviceID))
			m.detachLoop(deviceID, l)
			return
		}
		consecutive++
		m.log.Error("watcher check failed",
			zap.String("device", deviceID),
			zap.Int("consecutive", consecutive),
			zap.Error(err))
		if consecutive >= maxConsecutiveFailures {
			m.log.Error("too many consecutive watcher failures, stopping loop",
				zap.String("device", deviceID))
			m.detachLoop(deviceID, l)
			return
		}
	}
}

// detachLoop removes a self-terminating loop from the registry so Running
// reflects reality and a later Start works.
func (m *Manager) detachLoop(deviceID string, l *loop) {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	if m.loops[key] == l {
		delete(m.loops, key)
	}
	m.mu.Unlock()
}

// TriggerOnce evaluates all rules against the live UI once and executes the
// first (highest priority) rule whose conditions all match. It returns the
// triggered rule name, or empty when nothing matched.
func (m *Manager) TriggerOnce(ctx context.Context, deviceID string) (string, error) {
	key := m.devices.Key(deviceID)
	m.mu.Lock()
	rules := make([]*Rule, 0, len(m.rules[key]))
	for _, r := range m.rules[key] {
		if r.Enabled {
			rules = append(rules, r)
		}
	}
	m.mu.Unlock()
	if len(rules) == 0 {
		return "", nil
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })

	triggered := ""
	err := m.devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		dump, err := dev.DumpHierarchy(ctx)
		if err != nil {
			return err
		}
		elements, err := ref.ParseHierarchy(dump)
		if err != nil {
			return err
		}

		for _, rule := range rules {
			target := matchRule(rule, elements)
			if target == nil {
				continue
			}
			if err := m.perform(ctx, dev, rule, target); err != nil {
				return err
			}
			m.mu.Lock()
			rule.TriggerCount++
			rule.LastTriggered = time.Now()
			m.mu.Unlock()
			m.log.Info("watcher triggered",
				zap.String("device", deviceID), zap.String("name", rule.Name))
			triggered = rule.Name
			return nil
		}
		return nil
	})
	return triggered, err
}

// matchRule checks every condition of a rule against the parsed elements and
// returns the element the action should target, or nil when any condition
// fails.
func matchRule(rule *Rule, elements []*ref.ElementDescriptor) *ref.ElementDescriptor {
	var target *ref.ElementDescriptor
	for i, cond := range rule.Conditions {
		crit, err := cond.criteria()
		if err != nil {
			return nil
		}
		var match *ref.ElementDescriptor
		for _, el := range elements {
			if el.Matches(crit) {
				match = el
				break
			}
		}
		if match == nil {
			return nil
		}
		if i == 0 || i == rule.ActionTarget {
			if target == nil || i == rule.ActionTarget {
				target = match
			}
		}
	}
	return target
}

func (m *Manager) perform(ctx context.Context, dev android.Device, rule *Rule, target *ref.ElementDescriptor) error {
	switch {
	case rule.Action == "click":
		x, y := target.Center()
		return dev.Click(ctx, x, y)
	case rule.Action == "back":
		return dev.Press(ctx, "back")
	case rule.Action == "home":
		return dev.Press(ctx, "home")
	case strings.HasPrefix(rule.Action, "press:"):
		return dev.Press(ctx, strings.TrimPrefix(rule.Action, "press:"))
	}
	return fmt.Errorf("unknown watcher action: %q", rule.Action)
}
