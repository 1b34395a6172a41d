package buildinfo

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	for name, value := range map[string]string{
		"Version":   info.Version,
		"Commit":    info.Commit,
		"BuildTime": info.BuildTime,
		"GoVersion": info.GoVersion,
	} {
		if value == "" {
			t.Errorf("Get().%s is empty", name)
		}
	}

	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestString(t *testing.T) {
	s := String()

	want := Version + " (" + Commit + ") built at " + BuildTime
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}

func TestInfo_JSON(t *testing.T) {
	data, err := json.Marshal(Get())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, key := range []string{"version", "commit", "build_time", "go_version"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Errorf("JSON output missing %q key: %s", key, data)
		}
	}
}
