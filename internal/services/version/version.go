// Package version exposes the build information reported on /health.
package version

import "runtime/debug"

// Set at build time via -ldflags "-X .../version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information, filling the commit from embedded VCS
// data when it was not set through ldflags.
func Get() Info {
	info := Info{
		Version: Version,
		Commit:  Commit,
	}
	if build, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = build.GoVersion
		if info.Commit == "" {
			for _, setting := range build.Settings {
				if setting.Key == "vcs.revision" {
					info.Commit = setting.Value
					break
				}
			}
		}
	}
	return info
}

// String returns "version (commit)" with the commit truncated to 7 chars.
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return i.Version + " (" + commit + ")"
}
