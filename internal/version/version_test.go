package version

import (
	"strings"
	"testing"
)

func TestGet_LdflagsTakePrecedence(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = oldV, oldC, oldB })

	Version, Commit, BuildDate = "1.2.3", "abc123", "2026-01-02T03:04:05Z"
	info := Get()

	if info.Version != "1.2.3" || info.Commit != "abc123" || info.BuildDate != "2026-01-02T03:04:05Z" {
		t.Errorf("Get() = %+v", info)
	}
	if info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("expected runtime details, got %+v", info)
	}
}

func TestGet_Defaults(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = oldV, oldC, oldB })

	Version, Commit, BuildDate = "", "", ""
	info := Get()
	if info.Version == "" || info.Commit == "" || info.BuildDate == "" {
		t.Errorf("expected non-empty fallbacks, got %+v", info)
	}
}

func TestInfo_Short(t *testing.T) {
	if got := (Info{Version: "1.0.0"}).Short(); got != "1.0.0" {
		t.Errorf("Short() = %q", got)
	}
	if got := (Info{Version: "1.0.0", Modified: true}).Short(); got != "1.0.0-dirty" {
		t.Errorf("Short() = %q", got)
	}
}

func TestInfo_String(t *testing.T) {
	s := Info{Version: "1.0.0", Commit: "abc", BuildDate: "now", GoVersion: "go1.25", Platform: "linux/amd64"}.String()
	for _, want := range []string{"psle 1.0.0", "Commit:     abc", "OS/Arch:    linux/amd64"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
