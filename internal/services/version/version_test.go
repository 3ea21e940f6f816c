package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Expected version to be non-empty")
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "v1.2.3"}
	if got := info.String(); got != "v1.2.3" {
		t.Errorf("Expected v1.2.3, got %s", got)
	}

	info.Commit = "abcdef1234567890"
	got := info.String()
	if !strings.HasPrefix(got, "v1.2.3 (") {
		t.Errorf("Expected version with commit, got %s", got)
	}
	if !strings.Contains(got, "abcdef1") || strings.Contains(got, "abcdef12") {
		t.Errorf("Expected commit truncated to 7 chars, got %s", got)
	}
}
