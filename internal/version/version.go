// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build as "ftsi <version> (commit <sha>, built <date>)".
func String() string {
	return fmt.Sprintf("ftsi %s (commit %s, built %s)", Version, Commit, Date)
}
