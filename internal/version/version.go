package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Info is the build metadata of the running binary.
type Info struct {
	// Version is the semantic version.
	Version string
	// Commit is the git revision.
	Commit string
	// BuildTime is the build timestamp.
	BuildTime string
	// GoVersion is the toolchain the binary was built with.
	GoVersion string
}

// Current returns the build metadata of the running binary.
func Current() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and toolchain.
func Full() string {
	info := Current()

	return fmt.Sprintf("aid-escrow %s (commit %s, built %s, %s)", info.Version, info.Commit, info.BuildTime, info.GoVersion)
}
