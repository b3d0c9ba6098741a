package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetVersionDefaultsToDev(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = ""
	if got := GetVersion(); got != "dev" {
		t.Errorf("Expected dev, got %s", got)
	}
}

func TestGetFullVersion(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "1.2.3"
	full := GetFullVersion()
	if !strings.HasPrefix(full, "1.2.3 (commit: ") {
		t.Errorf("Unexpected full version: %s", full)
	}
	if !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Expected platform in %s", full)
	}
	if Get().GoVersion != runtime.Version() {
		t.Error("Expected Go version in build info")
	}
}
