package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/deliveryman/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/deliveryman/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/deliveryman/internal/version.Date={{.Date}}
)

// String describes the build for the version command
func String() string {
	return fmt.Sprintf("deliveryman version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
