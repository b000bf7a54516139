package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools declares every tool and binds it to its handler. Tool names
// and parameter shapes are the public contract; changing one breaks clients.
func (s *Server) registerTools() {
	// device management
	s.mcp.AddTool(
		mcp.NewTool("device_list",
			mcp.WithDescription("List connected Android devices with availability state"),
		),
		s.handleDeviceList,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_select",
			mcp.WithDescription("Select the default device used when device_id is omitted"),
			mcp.WithString("device_id", mcp.Description("Device serial to select (empty to clear)")),
		),
		s.handleDeviceSelect,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_info",
			mcp.WithDescription("Get device identity and screen size"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleDeviceInfo,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_unlock",
			mcp.WithDescription("Wake the screen and swipe up to dismiss the keyguard"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleDeviceUnlock,
	)

	// UI inspection
	s.mcp.AddTool(
		mcp.NewTool("device_snapshot",
			mcp.WithDescription("Capture the UI hierarchy. Returns elements with refs (e0, e1, ...) usable in tap/type tools until the next snapshot."),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleSnapshot,
	)
	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the screen as a PNG image"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithNumber("scale", mcp.Description("Downscale factor 0.1-1.0 (default 0.5)")),
		),
		s.handleScreenshot,
	)
	s.mcp.AddTool(
		mcp.NewTool("find_element",
			mcp.WithDescription("Search the current snapshot for elements matching criteria. Take a snapshot first."),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("text", mcp.Description("Exact text match")),
			mcp.WithString("text_contains", mcp.Description("Substring text match")),
			mcp.WithString("resource_id", mcp.Description("Exact resource ID match")),
			mcp.WithString("resource_id_contains", mcp.Description("Substring resource ID match")),
			mcp.WithString("class_name", mcp.Description("Exact class name match")),
			mcp.WithString("content_desc", mcp.Description("Exact content description match")),
			mcp.WithBoolean("clickable", mcp.Description("Filter by clickable flag")),
			mcp.WithBoolean("enabled", mcp.Description("Filter by enabled flag")),
		),
		s.handleFindElement,
	)

	// interaction
	s.mcp.AddTool(
		mcp.NewTool("device_tap",
			mcp.WithDescription("Tap an element by ref or a point by coordinates"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("ref", mcp.Description("Element ref from the current snapshot (e.g. 'e5')")),
			mcp.WithNumber("x", mcp.Description("Tap at X coordinate")),
			mcp.WithNumber("y", mcp.Description("Tap at Y coordinate")),
		),
		s.handleTap,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_double_tap",
			mcp.WithDescription("Double-tap an element by ref or a point by coordinates"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("ref", mcp.Description("Element ref from the current snapshot")),
			mcp.WithNumber("x", mcp.Description("Tap at X coordinate")),
			mcp.WithNumber("y", mcp.Description("Tap at Y coordinate")),
		),
		s.handleDoubleTap,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_long_press",
			mcp.WithDescription("Long-press an element by ref or a point by coordinates"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("ref", mcp.Description("Element ref from the current snapshot")),
			mcp.WithNumber("x", mcp.Description("Press at X coordinate")),
			mcp.WithNumber("y", mcp.Description("Press at Y coordinate")),
			mcp.WithNumber("duration_ms", mcp.Description("Press duration in ms (default 1000)")),
		),
		s.handleLongPress,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_type",
			mcp.WithDescription("Type text, optionally tapping an element first to focus it"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithString("ref", mcp.Description("Element ref to focus before typing")),
			mcp.WithBoolean("clear", mcp.Description("Clear the field before typing")),
		),
		s.handleType,
	)
	s.mcp.AddTool(
		mcp.NewTool("device_swipe",
			mcp.WithDescription("Swipe between two points"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
			mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
			mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
			mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
			mcp.WithNumber("duration_ms", mcp.Description("Swipe duration in ms (default 300)")),
		),
		s.handleSwipe,
	)
	s.mcp.AddTool(
		mcp.NewTool("clear_text",
			mcp.WithDescription("Clear the focused text field, optionally focusing an element first"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("ref", mcp.Description("Element ref to focus before clearing")),
		),
		s.handleClearText,
	)

	// navigation
	s.mcp.AddTool(
		mcp.NewTool("press_key",
			mcp.WithDescription("Press a named key (home, back, enter, volume_up, ... or any KEYCODE_* constant)"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("key", mcp.Description("Key name"), mcp.Required()),
		),
		s.handlePressKey,
	)
	s.mcp.AddTool(
		mcp.NewTool("go_back",
			mcp.WithDescription("Press the back button"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleGoBack,
	)
	s.mcp.AddTool(
		mcp.NewTool("go_home",
			mcp.WithDescription("Press the home button"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleGoHome,
	)
	s.mcp.AddTool(
		mcp.NewTool("app_start",
			mcp.WithDescription("Launch an app by package name, optionally at a specific activity"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("package", mcp.Description("Package name (e.g. com.android.settings)"), mcp.Required()),
			mcp.WithString("activity", mcp.Description("Explicit activity to start")),
		),
		s.handleAppStart,
	)
	s.mcp.AddTool(
		mcp.NewTool("app_stop",
			mcp.WithDescription("Force-stop an app"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("package", mcp.Description("Package name"), mcp.Required()),
		),
		s.handleAppStop,
	)
	s.mcp.AddTool(
		mcp.NewTool("app_current",
			mcp.WithDescription("Get the foreground package and activity"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleAppCurrent,
	)
	s.mcp.AddTool(
		mcp.NewTool("open_notification",
			mcp.WithDescription("Expand the notification shade"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleOpenNotification,
	)
	s.mcp.AddTool(
		mcp.NewTool("open_quick_settings",
			mcp.WithDescription("Expand the quick settings panel"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleOpenQuickSettings,
	)
	s.mcp.AddTool(
		mcp.NewTool("set_orientation",
			mcp.WithDescription("Fix screen rotation (0=portrait, 1=landscape, 2=reverse portrait, 3=reverse landscape)"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithNumber("rotation", mcp.Description("Rotation 0-3"), mcp.Required()),
		),
		s.handleSetOrientation,
	)

	// waiting
	s.mcp.AddTool(
		mcp.NewTool("wait_for_element",
			mcp.WithDescription("Poll until an element matching the criteria appears"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("text", mcp.Description("Exact text match")),
			mcp.WithString("text_contains", mcp.Description("Substring text match")),
			mcp.WithString("resource_id", mcp.Description("Exact resource ID match")),
			mcp.WithString("resource_id_contains", mcp.Description("Substring resource ID match")),
			mcp.WithString("class_name", mcp.Description("Exact class name match")),
			mcp.WithString("content_desc", mcp.Description("Exact content description match")),
			mcp.WithBoolean("clickable", mcp.Description("Filter by clickable flag")),
			mcp.WithBoolean("enabled", mcp.Description("Filter by enabled flag")),
			mcp.WithNumber("timeout_seconds", mcp.Description("Max wait in seconds (default 10)")),
		),
		s.handleWaitForElement,
	)
	s.mcp.AddTool(
		mcp.NewTool("wait_for_element_gone",
			mcp.WithDescription("Poll until no element matches the criteria"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("text", mcp.Description("Exact text match")),
			mcp.WithString("text_contains", mcp.Description("Substring text match")),
			mcp.WithString("resource_id", mcp.Description("Exact resource ID match")),
			mcp.WithString("resource_id_contains", mcp.Description("Substring resource ID match")),
			mcp.WithString("class_name", mcp.Description("Exact class name match")),
			mcp.WithString("content_desc", mcp.Description("Exact content description match")),
			mcp.WithBoolean("clickable", mcp.Description("Filter by clickable flag")),
			mcp.WithBoolean("enabled", mcp.Description("Filter by enabled flag")),
			mcp.WithNumber("timeout_seconds", mcp.Description("Max wait in seconds (default 10)")),
		),
		s.handleWaitForElementGone,
	)
	s.mcp.AddTool(
		mcp.NewTool("wait_for_activity",
			mcp.WithDescription("Poll until a package (and optionally activity) is in the foreground"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("package", mcp.Description("Package name"), mcp.Required()),
			mcp.WithString("activity", mcp.Description("Activity name (any when omitted)")),
			mcp.WithNumber("timeout_seconds", mcp.Description("Max wait in seconds (default 10)")),
		),
		s.handleWaitForActivity,
	)

	// watchers
	s.mcp.AddTool(
		mcp.NewTool("watcher_add",
			mcp.WithDescription("Register a popup watcher rule. Conditions all match -> action runs."),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("name", mcp.Description("Rule name (replaces an existing rule with the same name)"), mcp.Required()),
			mcp.WithArray("conditions", mcp.Description("Array of {type, value}; types: text, text_contains, resource_id, resource_id_contains"), mcp.Required()),
			mcp.WithString("action", mcp.Description("click, back, home, or press:<key> (default click)")),
			mcp.WithNumber("action_target", mcp.Description("Condition index whose match gets clicked (-1 = first)")),
			mcp.WithNumber("priority", mcp.Description("Higher priority rules are checked first")),
		),
		s.handleWatcherAdd,
	)
	s.mcp.AddTool(
		mcp.NewTool("watcher_remove",
			mcp.WithDescription("Remove a watcher rule by name"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("name", mcp.Description("Rule name"), mcp.Required()),
		),
		s.handleWatcherRemove,
	)
	s.mcp.AddTool(
		mcp.NewTool("watcher_list",
			mcp.WithDescription("List watcher rules and whether background monitoring is running"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleWatcherList,
	)
	s.mcp.AddTool(
		mcp.NewTool("watcher_start",
			mcp.WithDescription("Start background watcher monitoring for a device"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithNumber("poll_interval_seconds", mcp.Description("Check interval in seconds (default 1)")),
		),
		s.handleWatcherStart,
	)
	s.mcp.AddTool(
		mcp.NewTool("watcher_stop",
			mcp.WithDescription("Stop background watcher monitoring and return trigger stats"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleWatcherStop,
	)
	s.mcp.AddTool(
		mcp.NewTool("watcher_trigger_once",
			mcp.WithDescription("Check all watcher rules against the live UI once"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleWatcherTriggerOnce,
	)

	// performance
	s.mcp.AddTool(
		mcp.NewTool("perf_metrics",
			mcp.WithDescription("Collect one metrics sample: CPU, memory, battery, network, FPS"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("package", mcp.Description("Package to measure (foreground app when omitted)")),
		),
		s.handlePerfMetrics,
	)
	s.mcp.AddTool(
		mcp.NewTool("perf_monitor_start",
			mcp.WithDescription("Start a background metrics sampling session"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("package", mcp.Description("Package to measure")),
			mcp.WithNumber("poll_interval_seconds", mcp.Description("Sampling interval in seconds (default 1)")),
		),
		s.handlePerfMonitorStart,
	)
	s.mcp.AddTool(
		mcp.NewTool("perf_monitor_stop",
			mcp.WithDescription("Stop a sampling session and return its samples"),
			mcp.WithString("session_id", mcp.Description("Session ID from perf_monitor_start"), mcp.Required()),
		),
		s.handlePerfMonitorStop,
	)

	// gesture recording
	s.mcp.AddTool(
		mcp.NewTool("recording_start",
			mcp.WithDescription("Begin capturing a named gesture recording"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("name", mcp.Description("Recording name"), mcp.Required()),
		),
		s.handleRecordingStart,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_add_event",
			mcp.WithDescription("Append a gesture to the active recording"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
			mcp.WithString("type", mcp.Description("tap, long_press, swipe, type, or key"), mcp.Required()),
			mcp.WithNumber("x", mcp.Description("X coordinate")),
			mcp.WithNumber("y", mcp.Description("Y coordinate")),
			mcp.WithNumber("x2", mcp.Description("Swipe end X")),
			mcp.WithNumber("y2", mcp.Description("Swipe end Y")),
			mcp.WithString("text", mcp.Description("Text for type events")),
			mcp.WithString("key", mcp.Description("Key name for key events")),
			mcp.WithNumber("duration_ms", mcp.Description("Gesture duration in ms")),
			mcp.WithNumber("delay_ms", mcp.Description("Pause before the event in ms")),
		),
		s.handleRecordingAddEvent,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_stop",
			mcp.WithDescription("Finish the active recording and return it"),
			mcp.WithString("device_id", mcp.Description("Device serial (omit to use the default device)")),
		),
		s.handleRecordingStop,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_list",
			mcp.WithDescription("List stored recordings, newest first"),
		),
		s.handleRecordingList,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_delete",
			mcp.WithDescription("Delete a recording by ID"),
			mcp.WithString("recording_id", mcp.Description("Recording ID"), mcp.Required()),
		),
		s.handleRecordingDelete,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_play",
			mcp.WithDescription("Replay a recording on its device"),
			mcp.WithString("recording_id", mcp.Description("Recording ID"), mcp.Required()),
			mcp.WithNumber("speed", mcp.Description("Playback speed multiplier (default 1.0)")),
		),
		s.handleRecordingPlay,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_export",
			mcp.WithDescription("Export a recording as JSON"),
			mcp.WithString("recording_id", mcp.Description("Recording ID"), mcp.Required()),
		),
		s.handleRecordingExport,
	)
	s.mcp.AddTool(
		mcp.NewTool("recording_import",
			mcp.WithDescription("Import a recording from JSON (gets a fresh ID)"),
			mcp.WithString("data", mcp.Description("JSON produced by recording_export"), mcp.Required()),
		),
		s.handleRecordingImport,
	)
}
