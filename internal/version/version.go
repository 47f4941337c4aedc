package version

import "fmt"

// Version is the release version embedded in the binary.
// It can be overridden at build time via:
// go build -ldflags "-X github.com/noll-to/noll/internal/version.Version=0.2.0"
var Version = "0.1.0"

// Commit is the git commit hash embedded in the binary.
var Commit = "unknown"

// BuildDate is the RFC3339 build timestamp embedded in the binary.
var BuildDate = "unknown"

// Info returns a multi-line version string for CLI output.
func Info() string {
	return fmt.Sprintf("noll %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
}

// UserAgent is sent with every request to the Noll service.
func UserAgent() string {
	return "noll-go/" + Version
}
