package perf

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Metrics is one sample of device/app performance counters. Pointer fields
// are nil when a collector could not produce a value; a partial sample is
// still useful.
type Metrics struct {
	Timestamp          time.Time `yaml:"timestamp"                     json:"timestamp"`
	CPUPercent         *float64  `yaml:"cpu_percent,omitempty"         json:"cpu_percent,omitempty"`
	MemoryMB           *float64  `yaml:"memory_mb,omitempty"           json:"memory_mb,omitempty"`
	MemoryPercent      *float64  `yaml:"memory_percent,omitempty"      json:"memory_percent,omitempty"`
	FPS                *float64  `yaml:"fps,omitempty"                 json:"fps,omitempty"`
	NetworkRxBytes     *int64    `yaml:"network_rx_bytes,omitempty"    json:"network_rx_bytes,omitempty"`
	NetworkTxBytes     *int64    `yaml:"network_tx_bytes,omitempty"    json:"network_tx_bytes,omitempty"`
	BatteryLevel       *int      `yaml:"battery_level,omitempty"       json:"battery_level,omitempty"`
	BatteryTemperature *float64  `yaml:"battery_temperature,omitempty" json:"battery_temperature,omitempty"`
}

var (
	packageRe     = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)*$`)
	cpuMemRe      = regexp.MustCompile(`(\d+\.?\d*)\s+(\d+\.?\d*)\s+\d+:\d+\.\d+\s+`)
	meminfoRe     = regexp.MustCompile(`TOTAL:?\s+(\d+)`)
	batteryLvlRe  = regexp.MustCompile(`level:\s*(\d+)`)
	batteryTempRe = regexp.MustCompile(`temperature:\s*(\d+)`)
)

// maxPackageNameLen bounds package names before shell interpolation.
const maxPackageNameLen = 256

// ValidPackageName reports whether a package name is safe to interpolate
// into a device shell command: dot-separated segments of word characters,
// each starting with a letter.
func ValidPackageName(pkg string) bool {
	return pkg != "" && len(pkg) <= maxPackageNameLen && packageRe.MatchString(pkg)
}

// parseTopOutput extracts CPU%% and MEM%% for a package from `top -n 1 -b`
// output filtered to the package's line.
func parseTopOutput(out string) (cpu, mem float64, ok bool) {
	m := cpuMemRe.FindStringSubmatch(out)
	if m == nil {
		return 0, 0, false
	}
	cpu, err1 := strconv.ParseFloat(m[1], 64)
	mem, err2 := strconv.ParseFloat(m[2], 64)
	return cpu, mem, err1 == nil && err2 == nil
}

// parseMeminfo extracts the TOTAL PSS in MB from `dumpsys meminfo <pkg>`.
func parseMeminfo(out string) (float64, bool) {
	m := meminfoRe.FindStringSubmatch(out)
	if m == nil {
		return 0, false
	}
	kb, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return kb / 1024, true
}

// parseBattery extracts level and temperature (tenths of a degree) from
// `dumpsys battery`.
func parseBattery(out string) (level int, temp float64, haveLevel, haveTemp bool) {
	if m := batteryLvlRe.FindStringSubmatch(out); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			level, haveLevel = v, true
		}
	}
	if m := batteryTempRe.FindStringSubmatch(out); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			temp, haveTemp = float64(v)/10, true
		}
	}
	return
}

// parseNetDev sums rx/tx byte counters across all non-loopback interfaces
// in /proc/net/dev.
func parseNetDev(out string) (rx, tx int64, ok bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, ":") || strings.Contains(line, "lo:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		r, err1 := strconv.ParseInt(fields[1], 10, 64)
		t, err2 := strconv.ParseInt(fields[9], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rx += r
		tx += t
		ok = true
	}
	return
}

// parseSurfaceFlinger approximates FPS from SurfaceFlinger latency output
// collected over half a second: count non-zero frames and double.
func parseSurfaceFlinger(out string) (float64, bool) {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) <= 2 {
		return 0, false
	}
	frames := 0
	for _, l := range lines[1:] {
		fields := strings.Fields(l)
		if len(fields) > 0 && fields[0] != "0" {
			frames++
		}
	}
	return float64(frames * 2), true
}
