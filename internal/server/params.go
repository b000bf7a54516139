package server

import "github.com/droidcli/droidcli/internal/ref"

// StringParam returns a string parameter or the default.
func StringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

// IntParam returns an integer parameter or the default. JSON numbers arrive
// as float64.
func IntParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// FloatParam returns a float parameter or the default.
func FloatParam(params map[string]interface{}, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// BoolParam returns a boolean parameter or the default.
func BoolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// HasParam reports whether the caller supplied the parameter at all, which
// matters for tri-state filters and coordinate pairs.
func HasParam(params map[string]interface{}, key string) bool {
	_, ok := params[key]
	return ok
}

// criteriaFromParams assembles element-matching criteria from the common
// find/wait parameter set. Absent parameters stay unset (nil).
func criteriaFromParams(params map[string]interface{}) ref.Criteria {
	var c ref.Criteria
	if v, ok := params["text"].(string); ok && v != "" {
		c.Text = &v
	}
	if v, ok := params["text_contains"].(string); ok && v != "" {
		c.TextContains = &v
	}
	if v, ok := params["resource_id"].(string); ok && v != "" {
		c.ResourceID = &v
	}
	if v, ok := params["resource_id_contains"].(string); ok && v != "" {
		c.ResourceIDContains = &v
	}
	if v, ok := params["class_name"].(string); ok && v != "" {
		c.Class = &v
	}
	if v, ok := params["content_desc"].(string); ok && v != "" {
		c.ContentDesc = &v
	}
	if v, ok := params["clickable"].(bool); ok {
		c.Clickable = &v
	}
	if v, ok := params["enabled"].(bool); ok {
		c.Enabled = &v
	}
	return c
}
