package version

import (
	"bytes"
	"strings"
	"testing"

	"nesemu/internal/graphics"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{"no commit", BuildInfo{Version: "v1.2.0"}, "v1.2.0"},
		{"short commit", BuildInfo{Version: "dev", Commit: "abc"}, "dev-abc"},
		{"long commit", BuildInfo{Version: "dev", Commit: "0123456789abcdef"}, "dev-0123456"},
		{"modified", BuildInfo{Version: "dev", Commit: "0123456789", Modified: true}, "dev-0123456+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestReadListsBackends(t *testing.T) {
	info := Read()

	if info.GoVersion == "" || info.Platform == "" {
		t.Errorf("Expected Go version and platform, got %+v", info)
	}

	last := info.Backends[len(info.Backends)-1]
	if last != graphics.BackendHeadless {
		t.Errorf("Expected headless backend to always be available, got %v", info.Backends)
	}
	if !strings.Contains(info.String(), "headless") || !strings.HasPrefix(info.String(), "nesemu ") {
		t.Errorf("Expected summary to name the binary and its backends, got %q", info.String())
	}
}

func TestPrint(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		GoVersion: "go1.23.4",
		Platform:  "linux/amd64",
		Backends:  []graphics.BackendType{graphics.BackendEbitengine, graphics.BackendHeadless},
	}

	var out bytes.Buffer
	info.Print(&out)

	expected := "nesemu v1.0.0\n" +
		"Go:       go1.23.4 linux/amd64\n" +
		"Backends: ebitengine (default)\n" +
		"          headless\n"
	if out.String() != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, out.String())
	}
}
