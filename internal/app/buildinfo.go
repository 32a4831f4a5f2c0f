package app

import "fmt"

// Build information set with -ldflags "-X .../internal/app.BuildVersion=..."
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Version formats the build information for -version and startup logs.
func Version() string {
	return fmt.Sprintf("articlegen %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
