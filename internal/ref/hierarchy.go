package ref

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// boundsRe extracts integer fields from a bounds attribute like
// "[100,200][300,400]".
var boundsRe = regexp.MustCompile(`\d+`)

// parseBounds parses a bracketed coordinate-pair string. It takes exactly the
// first four integers found; anything shorter yields the degenerate zero rect
// rather than failing the whole document.
func parseBounds(s string) Bounds {
	nums := boundsRe.FindAllString(s, 4)
	if len(nums) < 4 {
		return Bounds{}
	}
	vals := make([]int, 4)
	for i, n := range nums {
		v, err := strconv.Atoi(n)
		if err != nil {
			return Bounds{}
		}
		vals[i] = v
	}
	return Bounds{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}
}

// maxDocumentDepth bounds nesting so an adversarial document cannot force
// unbounded state. Real uiautomator dumps stay well under this.
const maxDocumentDepth = 256

// ParseHierarchy converts one raw uiautomator XML dump into an ordered list
// of element descriptors. Traversal is depth-first pre-order in document
// order; refs "e0", "e1", ... are assigned in that order, and only nodes
// with non-degenerate bounds receive one. Nodes with degenerate bounds are
// still traversed so their children get refs.
//
// The decoder runs in strict mode with no custom entity table, so external
// entity resolution and recursive entity expansion are rejected outright.
// Any decoder failure is reported as *MalformedInputError.
func ParseHierarchy(content string) ([]*ElementDescriptor, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	dec.Strict = true
	// No Entity table and no CharsetReader: undefined entities and
	// non-UTF-8 payloads fail instead of being expanded or fetched.

	var (
		out   []*ElementDescriptor
		depth int
		seen  bool
		next  int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Reason: "invalid XML", Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			seen = true
			depth++
			if depth > maxDocumentDepth {
				return nil, &MalformedInputError{Reason: fmt.Sprintf("document nested deeper than %d levels", maxDocumentDepth)}
			}
			if d := descriptorFromNode(t, next); d != nil {
				out = append(out, d)
				next++
			}
		case xml.EndElement:
			depth--
		}
	}
	if !seen {
		return nil, &MalformedInputError{Reason: "document contains no elements"}
	}
	return out, nil
}

// descriptorFromNode builds a descriptor for one node, or nil when the node
// has degenerate bounds and is therefore omitted from the ref table.
func descriptorFromNode(se xml.StartElement, ordinal int) *ElementDescriptor {
	attrs := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		attrs[a.Name.Local] = a.Value
	}

	bounds := parseBounds(attrs["bounds"])
	if bounds.IsZero() {
		return nil
	}

	class := attrs["class"]
	if class == "" {
		class = "node"
	}

	d := &ElementDescriptor{
		Ref:           fmt.Sprintf("e%d", ordinal),
		Class:         class,
		Bounds:        bounds,
		ResourceID:    attrs["resource-id"],
		Text:          attrs["text"],
		ContentDesc:   attrs["content-desc"],
		Package:       attrs["package"],
		Clickable:     attrs["clickable"] == "true",
		Focusable:     attrs["focusable"] == "true",
		Enabled:       boolAttr(attrs, "enabled", true),
		Selected:      attrs["selected"] == "true",
		Scrollable:    attrs["scrollable"] == "true",
		LongClickable: attrs["long-clickable"] == "true",
	}
	if v, ok := attrs["checked"]; ok {
		checked := v == "true"
		d.Checked = &checked
	}
	if v, ok := attrs["index"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.Index = n
		}
	}
	return d
}

func boolAttr(attrs map[string]string, name string, def bool) bool {
	v, ok := attrs[name]
	if !ok {
		return def
	}
	return v == "true"
}
