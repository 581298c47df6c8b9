// Package version provides build-time version information for codesim.
//
// Build-time variables are injected via ldflags:
//
//	go build -ldflags "
//	  -X github.com/musuliman/codesim/internal/version.Version=x.y.z
//	  -X github.com/musuliman/codesim/internal/version.Commit=$(git rev-parse HEAD)
//	  -X github.com/musuliman/codesim/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
//	"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables injected via ldflags.
var (
	// Version is the semantic version; "0.0.0" for local builds.
	Version = "0.0.0"

	// Commit is the full git commit SHA.
	Commit = "unknown"

	// Date is the build timestamp in RFC3339 format.
	Date = "unknown"
)

func init() {
	// Without ldflags, fall back to VCS info stamped by the Go toolchain.
	if Commit == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					Commit = setting.Value
				case "vcs.time":
					Date = setting.Value
				}
			}
		}
	}
}

// Short returns just the semantic version.
func Short() string {
	return Version
}

// String returns the one-line human version.
func String() string {
	commit := Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("codesim %s (%s, %s, %s/%s)", Version, commit, Date, runtime.GOOS, runtime.GOARCH)
}

// JSON returns the version fields as a JSON object.
func JSON() string {
	raw, _ := json.Marshal(map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
		"go":      runtime.Version(),
	})
	return string(raw)
}
