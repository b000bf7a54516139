package ref

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// loginScreenXML mimics a trimmed uiautomator dump of a login form: a
// zero-bounds root, two text fields, and a login button.
const loginScreenXML = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" bounds="[0,0][0,0]" package="com.example.app">
    <node class="android.widget.EditText" resource-id="com.example.app:id/username" text="" bounds="[100,100][300,160]" clickable="true" focusable="true" enabled="true"/>
    <node class="android.widget.EditText" resource-id="com.example.app:id/password" text="" bounds="[100,180][300,240]" clickable="true" focusable="true" enabled="true"/>
    <node class="android.widget.Button" resource-id="com.example.app:id/login" text="Login" bounds="[100,200][300,280]" clickable="true" enabled="true"/>
  </node>
</hierarchy>`

func TestParseHierarchy_OrderAndRefs(t *testing.T) {
	elements, err := ParseHierarchy(loginScreenXML)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	// The zero-bounds FrameLayout is traversed but gets no ref.
	if len(elements) != 3 {
		t.Fatalf("expected 3 referenced elements, got %d", len(elements))
	}
	for i, el := range elements {
		want := fmt.Sprintf("e%d", i)
		if el.Ref != want {
			t.Errorf("element %d: ref = %q, want %q", i, el.Ref, want)
		}
	}
	if elements[0].ResourceID != "com.example.app:id/username" {
		t.Errorf("pre-order violated: first element is %q", elements[0].ResourceID)
	}
}

func TestParseHierarchy_ButtonCenter(t *testing.T) {
	elements, err := ParseHierarchy(loginScreenXML)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	login := elements[2]
	if login.Text != "Login" {
		t.Fatalf("expected login button, got text %q", login.Text)
	}
	x, y := login.Center()
	if x != 200 || y != 240 {
		t.Errorf("center = (%d,%d), want (200,240)", x, y)
	}
}

func TestParseHierarchy_Attributes(t *testing.T) {
	xml := `<hierarchy>
		<node bounds="[0,0][10,10]" text="a" checked="true" enabled="false" long-clickable="true" index="3"/>
		<node bounds="[0,0][10,10]" text="b"/>
	</hierarchy>`
	elements, err := ParseHierarchy(xml)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	a, b := elements[0], elements[1]

	if a.Class != "node" {
		t.Errorf("missing class should default to %q, got %q", "node", a.Class)
	}
	if a.Checked == nil || !*a.Checked {
		t.Error("checked attribute not parsed")
	}
	if a.Enabled {
		t.Error("enabled=\"false\" should parse as false")
	}
	if !a.LongClickable {
		t.Error("long-clickable not parsed")
	}
	if a.Index != 3 {
		t.Errorf("index = %d, want 3", a.Index)
	}
	// Absent attributes: checked stays nil, enabled defaults true.
	if b.Checked != nil {
		t.Error("absent checked attribute should stay nil")
	}
	if !b.Enabled {
		t.Error("absent enabled attribute should default to true")
	}
}

func TestParseHierarchy_Malformed(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"empty", ""},
		{"whitespace", "   \n  "},
		{"truncated", `<hierarchy><node bounds="[0,0][10,10]"`},
		{"unbalanced", `<hierarchy><node></hierarchy>`},
		{"undefined entity", `<hierarchy><node bounds="[0,0][10,10]" text="&boom;"/></hierarchy>`},
		{"external entity", `<?xml version="1.0"?><!DOCTYPE r [<!ENTITY x SYSTEM "file:///etc/passwd">]><hierarchy><node text="&x;" bounds="[0,0][10,10]"/></hierarchy>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHierarchy(tt.xml)
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("expected *MalformedInputError, got %v", err)
			}
		})
	}
}

func TestParseHierarchy_DepthLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("<hierarchy>")
	for i := 0; i < maxDocumentDepth+10; i++ {
		b.WriteString(`<node bounds="[0,0][10,10]">`)
	}
	for i := 0; i < maxDocumentDepth+10; i++ {
		b.WriteString("</node>")
	}
	b.WriteString("</hierarchy>")

	_, err := ParseHierarchy(b.String())
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedInputError for deep nesting, got %v", err)
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in   string
		want Bounds
	}{
		{"[100,200][300,400]", Bounds{100, 200, 300, 400}},
		{"[0,0][1080,2400]", Bounds{0, 0, 1080, 2400}},
		{"", Bounds{}},
		{"[1,2]", Bounds{}},
		{"garbage", Bounds{}},
	}
	for _, tt := range tests {
		if got := parseBounds(tt.in); got != tt.want {
			t.Errorf("parseBounds(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
