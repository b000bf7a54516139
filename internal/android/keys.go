package android

import (
	"fmt"
	"strings"
)

// keyCodes maps friendly key names to Android keycode names.
var keyCodes = map[string]string{
	"home":        "KEYCODE_HOME",
	"back":        "KEYCODE_BACK",
	"menu":        "KEYCODE_MENU",
	"enter":       "KEYCODE_ENTER",
	"tab":         "KEYCODE_TAB",
	"delete":      "KEYCODE_DEL",
	"del":         "KEYCODE_DEL",
	"escape":      "KEYCODE_ESCAPE",
	"space":       "KEYCODE_SPACE",
	"search":      "KEYCODE_SEARCH",
	"camera":      "KEYCODE_CAMERA",
	"power":       "KEYCODE_POWER",
	"wakeup":      "KEYCODE_WAKEUP",
	"sleep":       "KEYCODE_SLEEP",
	"volume_up":   "KEYCODE_VOLUME_UP",
	"volume_down": "KEYCODE_VOLUME_DOWN",
	"volume_mute": "KEYCODE_VOLUME_MUTE",
	"recent":      "KEYCODE_APP_SWITCH",
	"up":          "KEYCODE_DPAD_UP",
	"down":        "KEYCODE_DPAD_DOWN",
	"left":        "KEYCODE_DPAD_LEFT",
	"right":       "KEYCODE_DPAD_RIGHT",
	"center":      "KEYCODE_DPAD_CENTER",
}

// ResolveKey translates a friendly key name into the keycode name accepted
// by `input keyevent`. Already-qualified KEYCODE_* names pass through.
func ResolveKey(key string) (string, error) {
	if strings.HasPrefix(key, "KEYCODE_") {
		return key, nil
	}
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		return code, nil
	}
	return "", fmt.Errorf("unknown key: %q", key)
}
