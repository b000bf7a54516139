package ref

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is an immutable point-in-time capture of a device's UI: a ref
// table plus the device/app context it was taken in. Refs are unique within
// a snapshot and never renumbered after creation.
type Snapshot struct {
	ID           string
	DeviceID     string
	Package      string
	Activity     string
	CreatedAt    time.Time
	ScreenWidth  int
	ScreenHeight int
	ContentHash  string

	// order preserves traversal order; byRef is the lookup index.
	order []*ElementDescriptor
	byRef map[string]*ElementDescriptor
}

// newSnapshot assembles a snapshot from an already-parsed element list.
// The ID combines the device, a millisecond timestamp, and a random suffix
// so rapid consecutive captures never collide.
func newSnapshot(deviceID, pkg, activity string, width, height int, elements []*ElementDescriptor, content string, now time.Time) *Snapshot {
	s := &Snapshot{
		ID:           fmt.Sprintf("%s_%d_%s", deviceID, now.UnixMilli(), uuid.NewString()[:8]),
		DeviceID:     deviceID,
		Package:      pkg,
		Activity:     activity,
		CreatedAt:    now,
		ScreenWidth:  width,
		ScreenHeight: height,
		ContentHash:  hashContent(content),
		order:        elements,
		byRef:        make(map[string]*ElementDescriptor, len(elements)),
	}
	for _, el := range elements {
		s.byRef[el.Ref] = el
	}
	return s
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)[:16]
}

// Element returns the descriptor for a ref, if present.
func (s *Snapshot) Element(ref string) (*ElementDescriptor, bool) {
	d, ok := s.byRef[ref]
	return d, ok
}

// Elements returns the descriptors in traversal order. The returned slice is
// a copy; descriptors themselves are immutable.
func (s *Snapshot) Elements() []*ElementDescriptor {
	out := make([]*ElementDescriptor, len(s.order))
	copy(out, s.order)
	return out
}

// Refs returns all ref IDs in traversal order, capped at limit (0 = all).
func (s *Snapshot) Refs(limit int) []string {
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for _, el := range s.order[:n] {
		out = append(out, el.Ref)
	}
	return out
}

// Len returns the number of referenced elements.
func (s *Snapshot) Len() int { return len(s.order) }

// Age returns the snapshot's age relative to now.
func (s *Snapshot) Age(now time.Time) time.Duration { return now.Sub(s.CreatedAt) }

// Find returns all descriptors matching the criteria, in traversal order.
func (s *Snapshot) Find(c Criteria) []*ElementDescriptor {
	var out []*ElementDescriptor
	for _, el := range s.order {
		if el.Matches(c) {
			out = append(out, el)
		}
	}
	return out
}
