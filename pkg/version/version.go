// Package version carries build metadata injected at link time.
package version

// Set via -ldflags at build time; the defaults identify a dev build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
