package ref

import "strings"

// Bounds is an element's on-screen rectangle in pixels.
// Invariant: Left <= Right and Top <= Bottom.
type Bounds struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Right  int `yaml:"right"  json:"right"`
	Bottom int `yaml:"bottom" json:"bottom"`
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (int, int) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// Width returns the horizontal extent.
func (b Bounds) Width() int { return b.Right - b.Left }

// Height returns the vertical extent.
func (b Bounds) Height() int { return b.Bottom - b.Top }

// IsZero reports whether the rectangle is the degenerate all-zero rect.
// Nodes with zero bounds are traversed but never receive a ref.
func (b Bounds) IsZero() bool {
	return b.Left == 0 && b.Top == 0 && b.Right == 0 && b.Bottom == 0
}

// ElementDescriptor describes one UI node captured at snapshot time.
// Descriptors are immutable once built and owned by their Snapshot.
type ElementDescriptor struct {
	Ref           string `yaml:"ref"                     json:"ref"`
	Class         string `yaml:"class"                   json:"class"`
	Bounds        Bounds `yaml:"bounds"                  json:"bounds"`
	ResourceID    string `yaml:"resource_id,omitempty"   json:"resource_id,omitempty"`
	Text          string `yaml:"text,omitempty"          json:"text,omitempty"`
	ContentDesc   string `yaml:"content_desc,omitempty"  json:"content_desc,omitempty"`
	Package       string `yaml:"package,omitempty"       json:"package,omitempty"`
	Clickable     bool   `yaml:"clickable"               json:"clickable"`
	Focusable     bool   `yaml:"focusable,omitempty"     json:"focusable,omitempty"`
	Enabled       bool   `yaml:"enabled"                 json:"enabled"`
	Selected      bool   `yaml:"selected,omitempty"      json:"selected,omitempty"`
	Scrollable    bool   `yaml:"scrollable,omitempty"    json:"scrollable,omitempty"`
	LongClickable bool   `yaml:"long_clickable,omitempty" json:"long_clickable,omitempty"`
	Checked       *bool  `yaml:"checked,omitempty"       json:"checked,omitempty"`
	Index         int    `yaml:"index,omitempty"         json:"index,omitempty"`
}

// Center returns the element's center point.
func (d *ElementDescriptor) Center() (int, int) { return d.Bounds.Center() }

// Criteria is a conjunction of optional match fields for element search.
// Nil fields are ignored; all non-nil fields must match (AND semantics).
type Criteria struct {
	Text               *string
	TextContains       *string
	ResourceID         *string
	ResourceIDContains *string
	Class              *string
	ContentDesc        *string
	Clickable          *bool
	Enabled            *bool
}

// IsZero reports whether no criteria fields are set.
func (c Criteria) IsZero() bool {
	return c.Text == nil && c.TextContains == nil &&
		c.ResourceID == nil && c.ResourceIDContains == nil &&
		c.Class == nil && c.ContentDesc == nil &&
		c.Clickable == nil && c.Enabled == nil
}

// Matches reports whether the descriptor satisfies every set criteria field.
func (d *ElementDescriptor) Matches(c Criteria) bool {
	if c.Text != nil && d.Text != *c.Text {
		return false
	}
	if c.TextContains != nil && !contains(d.Text, *c.TextContains) {
		return false
	}
	if c.ResourceID != nil && d.ResourceID != *c.ResourceID {
		return false
	}
	if c.ResourceIDContains != nil && !contains(d.ResourceID, *c.ResourceIDContains) {
		return false
	}
	if c.Class != nil && d.Class != *c.Class {
		return false
	}
	if c.ContentDesc != nil && d.ContentDesc != *c.ContentDesc {
		return false
	}
	if c.Clickable != nil && d.Clickable != *c.Clickable {
		return false
	}
	if c.Enabled != nil && d.Enabled != *c.Enabled {
		return false
	}
	return true
}

// contains is substring match that treats an unset field as a non-match,
// mirroring how an absent attribute can never contain anything.
func contains(haystack, needle string) bool {
	return haystack != "" && strings.Contains(haystack, needle)
}
