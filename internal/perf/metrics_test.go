package perf

import (
	"strings"
	"testing"
)

func TestValidPackageName(t *testing.T) {
	valid := []string{"com.android.settings", "a", "a.b.c_d", "App1.sub2"}
	for _, pkg := range valid {
		if !ValidPackageName(pkg) {
			t.Errorf("ValidPackageName(%q) = false, want true", pkg)
		}
	}
	invalid := []string{
		"",
		".leading",
		"trailing.",
		"1starts.with.digit",
		"com.example;reboot",
		"com example",
		"com.example$(x)",
		strings.Repeat("a", 257),
	}
	for _, pkg := range invalid {
		if ValidPackageName(pkg) {
			t.Errorf("ValidPackageName(%q) = true, want false", pkg)
		}
	}
}

func TestParseTopOutput(t *testing.T) {
	out := " 1234 u0_a123      10 -10 5.1G 312M 145M S 12.5   4.2   1:23.45 com.example.app"
	cpu, mem, ok := parseTopOutput(out)
	if !ok {
		t.Fatal("expected a parse")
	}
	if cpu != 12.5 {
		t.Errorf("cpu = %v, want 12.5", cpu)
	}
	if mem != 4.2 {
		t.Errorf("mem = %v, want 4.2", mem)
	}

	if _, _, ok := parseTopOutput(""); ok {
		t.Error("empty output should not parse")
	}
	if _, _, ok := parseTopOutput("no process line here"); ok {
		t.Error("garbage should not parse")
	}
}

func TestParseMeminfo(t *testing.T) {
	out := `Applications Memory Usage (in Kilobytes):

** MEMINFO in pid 1234 [com.example.app] **
          TOTAL:   204800     TOTAL SWAP PSS:      512`
	mb, ok := parseMeminfo(out)
	if !ok {
		t.Fatal("expected a parse")
	}
	if mb != 200 {
		t.Errorf("memory = %v MB, want 200", mb)
	}

	if _, ok := parseMeminfo("nothing"); ok {
		t.Error("expected no parse")
	}
}

func TestParseBattery(t *testing.T) {
	out := `Current Battery Service state:
  AC powered: false
  level: 87
  temperature: 285
  technology: Li-ion`
	level, temp, haveLevel, haveTemp := parseBattery(out)
	if !haveLevel || level != 87 {
		t.Errorf("level = %d (have=%v), want 87", level, haveLevel)
	}
	if !haveTemp || temp != 28.5 {
		t.Errorf("temp = %v (have=%v), want 28.5", temp, haveTemp)
	}

	level, temp, haveLevel, haveTemp = parseBattery("no battery info")
	if haveLevel || haveTemp {
		t.Errorf("expected no values, got level=%d temp=%v", level, temp)
	}
}

func TestParseNetDev(t *testing.T) {
	out := `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo:  999999    1000    0    0    0     0          0         0   999999    1000    0    0    0     0       0          0
 wlan0: 1000000    2000    0    0    0     0          0         0   500000    1500    0    0    0     0       0          0
rmnet0:  250000     800    0    0    0     0          0         0   125000     400    0    0    0     0       0          0`
	rx, tx, ok := parseNetDev(out)
	if !ok {
		t.Fatal("expected a parse")
	}
	// Loopback is excluded.
	if rx != 1250000 {
		t.Errorf("rx = %d, want 1250000", rx)
	}
	if tx != 625000 {
		t.Errorf("tx = %d, want 625000", tx)
	}

	if _, _, ok := parseNetDev("garbage"); ok {
		t.Error("expected no parse")
	}
}

func TestParseSurfaceFlinger(t *testing.T) {
	out := `16666667
0	0	0
123456789	123460000	123470000
123470000	123480000	123490000
0	0	0
123500000	123510000	123520000`
	fps, ok := parseSurfaceFlinger(out)
	if !ok {
		t.Fatal("expected a parse")
	}
	// 3 non-zero frame lines over half a second.
	if fps != 6 {
		t.Errorf("fps = %v, want 6", fps)
	}

	if _, ok := parseSurfaceFlinger(""); ok {
		t.Error("empty output should not parse")
	}
	if _, ok := parseSurfaceFlinger("16666667\n0 0 0"); ok {
		t.Error("too-short output should not parse")
	}
}
