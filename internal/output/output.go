// Package output serializes command results to stdout.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/droidcli/droidcli/internal/ref"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's
// --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Element is the serialized form of one element descriptor, with the
// derived center point included for direct interaction.
type Element struct {
	Ref         string `yaml:"ref"                    json:"ref"`
	Class       string `yaml:"class"                  json:"class"`
	Text        string `yaml:"text,omitempty"         json:"text,omitempty"`
	ContentDesc string `yaml:"content_desc,omitempty" json:"content_desc,omitempty"`
	ResourceID  string `yaml:"resource_id,omitempty"  json:"resource_id,omitempty"`
	Bounds      [4]int `yaml:"bounds"                 json:"bounds"`
	Center      [2]int `yaml:"center"                 json:"center"`
	Clickable   bool   `yaml:"clickable"              json:"clickable"`
	Focusable   bool   `yaml:"focusable,omitempty"    json:"focusable,omitempty"`
	Enabled     bool   `yaml:"enabled"                json:"enabled"`
	Scrollable  bool   `yaml:"scrollable,omitempty"   json:"scrollable,omitempty"`
	Selected    bool   `yaml:"selected,omitempty"     json:"selected,omitempty"`
	Checked     *bool  `yaml:"checked,omitempty"      json:"checked,omitempty"`
}

// NewElement converts a descriptor to its output form.
func NewElement(d *ref.ElementDescriptor) Element {
	cx, cy := d.Center()
	return Element{
		Ref:         d.Ref,
		Class:       d.Class,
		Text:        d.Text,
		ContentDesc: d.ContentDesc,
		ResourceID:  d.ResourceID,
		Bounds:      [4]int{d.Bounds.Left, d.Bounds.Top, d.Bounds.Right, d.Bounds.Bottom},
		Center:      [2]int{cx, cy},
		Clickable:   d.Clickable,
		Focusable:   d.Focusable,
		Enabled:     d.Enabled,
		Scrollable:  d.Scrollable,
		Selected:    d.Selected,
		Checked:     d.Checked,
	}
}

// NewElements converts a descriptor list, preserving order.
func NewElements(ds []*ref.ElementDescriptor) []Element {
	out := make([]Element, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewElement(d))
	}
	return out
}

// SnapshotResult is the top-level output of the `snapshot` command.
type SnapshotResult struct {
	SnapshotID   string    `yaml:"snapshot_id"   json:"snapshot_id"`
	URL          string    `yaml:"url"           json:"url"` // package/activity, like a browser URL
	ScreenWidth  int       `yaml:"screen_width"  json:"screen_width"`
	ScreenHeight int       `yaml:"screen_height" json:"screen_height"`
	ElementCount int       `yaml:"element_count" json:"element_count"`
	Elements     []Element `yaml:"elements"      json:"elements"`
}

// NewSnapshotResult converts a snapshot to its output form.
func NewSnapshotResult(s *ref.Snapshot) SnapshotResult {
	return SnapshotResult{
		SnapshotID:   s.ID,
		URL:          s.Package + "/" + s.Activity,
		ScreenWidth:  s.ScreenWidth,
		ScreenHeight: s.ScreenHeight,
		ElementCount: s.Len(),
		Elements:     NewElements(s.Elements()),
	}
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as JSON, indented when PrettyOutput is set.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if PrettyOutput {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
