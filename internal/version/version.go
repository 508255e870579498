package version

import (
	"fmt"
	"runtime"
)

// Build metadata, overridden at link time with -ldflags "-X ..."
var (
	GitVersion   = "dev"
	GitCommit    = "unknown"
	GitTreeState = "unknown"
	BuildDate    = "unknown"
)

// GetVersion returns the semantic version of the binary
func GetVersion() string {
	return GitVersion
}

// GetVersionInfo returns version information as a map
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":      GitVersion,
		"gitCommit":    GitCommit,
		"gitTreeState": GitTreeState,
		"buildDate":    BuildDate,
		"goVersion":    runtime.Version(),
		"platform":     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
