// Package version exposes build information stamped at link time.
package version

import "runtime"

// Build information. Populated at build-time via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}

// UserAgent returns the User-Agent value sent on outgoing API requests
func UserAgent() string {
	return "azure-cost-api/" + Version
}
