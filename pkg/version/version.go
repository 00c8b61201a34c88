// Package version exposes build metadata of the source-licenser binary.
package version

import (
	"runtime/debug"
)

const unknown = "<unknown>"

// Set at link time via -ldflags "-X .../pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Commit and Date from the embedded VCS build info
// when they were not set at link time, and Version from the module version
// for binaries installed with go install.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = shortRevision(setting.Value)
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	const shortLen = 12

	if len(rev) > shortLen {
		return rev[:shortLen]
	}

	return rev
}

// String renders the version line printed by the version command.
func String() string {
	return "source-licenser " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
