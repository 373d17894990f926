// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings and User-Agent headers.
const Name = "colortune"

// Set at build time, for example:
//
//	-ldflags "-X github.com/jmylchreest/colortune/internal/version.Version=1.2.0"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the structured build metadata printed by `colortune version --json`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the long form, including the short commit when known.
func String() string {
	info := GetInfo()
	if Commit == "unknown" || Date == "unknown" {
		return fmt.Sprintf("%s version %s (%s, %s)", Name, info.Version, info.GoVersion, info.Platform)
	}
	commit := info.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("%s version %s (commit: %s, built: %s, %s, %s)",
		Name, info.Version, commit, info.Date, info.GoVersion, info.Platform)
}

// UserAgent returns the User-Agent header value for outbound requests.
func UserAgent() string {
	return Name + "/" + Version
}
