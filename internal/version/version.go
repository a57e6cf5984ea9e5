// Package version reports the build stamped in by the linker, e.g.
//
//	go build -ldflags "-X github.com/kailas-cloud/usersearch/internal/version.Version=v1.4.0"
package version

import "fmt"

//nolint:gochecknoglobals // overwritten with -ldflags -X
var (
	Version = "devel"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build for --version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
