// Package version reports the build identity stamped in via ldflags.
package version

import "fmt"

// Set at build time:
//
//	go build -ldflags "-X github.com/example/workhub/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line shown by "workhub --version".
func String() string {
	return fmt.Sprintf("workhub dev (commit: %s, built: %s)", shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
