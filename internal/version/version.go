// Package version provides build-time version information.
package version

import "fmt"

// Set with -ldflags "-X floorplan/internal/version.Version=..." at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is the build description served on /version.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}

func (i Info) String() string {
	return fmt.Sprintf("floorplan %s (%s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
