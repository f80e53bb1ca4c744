// Package version reports how a nesemu binary was built.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"nesemu/internal/graphics"
)

// Set at build time with
// -ldflags "-X nesemu/internal/version.Version=v1.0.0 -X nesemu/internal/version.Commit=abc1234"
var (
	Version = "dev"
	Commit  = ""
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	Commit    string
	Modified  bool
	GoVersion string
	Platform  string
	Tags      string
	Backends  []graphics.BackendType
}

// Read collects build information from the linker variables, the module's
// VCS stamp and the backends compiled into this binary
func Read() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Backends:  graphics.CompiledBackends(),
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		case "-tags":
			info.Tags = setting.Value
		}
	}
	return info
}

// Short returns the version with an abbreviated commit, e.g. "dev-abc1234+"
func (b BuildInfo) Short() string {
	if b.Commit == "" {
		return b.Version
	}
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	s := b.Version + "-" + commit
	if b.Modified {
		s += "+"
	}
	return s
}

func (b BuildInfo) String() string {
	names := make([]string, len(b.Backends))
	for i, backend := range b.Backends {
		names[i] = string(backend)
	}
	return fmt.Sprintf("nesemu %s (%s %s, backends: %s)",
		b.Short(), b.GoVersion, b.Platform, strings.Join(names, ", "))
}

// Print writes the build information as a table
func (b BuildInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "nesemu %s\n", b.Short())
	fmt.Fprintf(w, "Go:       %s %s\n", b.GoVersion, b.Platform)
	if b.Tags != "" {
		fmt.Fprintf(w, "Tags:     %s\n", b.Tags)
	}
	for i, backend := range b.Backends {
		label := ""
		if i == 0 {
			label = "Backends:"
		}
		marker := ""
		if backend == graphics.BackendEbitengine {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%-9s %s%s\n", label, backend, marker)
	}
}
