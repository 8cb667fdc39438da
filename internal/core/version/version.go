// Package version reports what build is running. Release builds stamp it with
//
//	-ldflags "-X immiwatch/internal/core/version.version=v0.1.0 -X immiwatch/internal/core/version.commit=abcd"
//
// and anything left unstamped falls back to the toolchain's vcs settings.
package version

import (
	"runtime/debug"
	"sync"
)

// BuildInfo identifies a running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go,omitempty"`
}

var (
	service = "immiwatch"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

var resolved = sync.OnceValue(func() BuildInfo {
	b := BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
	if bi, ok := readBuildInfo(); ok {
		fillFrom(&b, bi)
	}
	return b
})

// Info returns the build information, resolved once per process
func Info() BuildInfo { return resolved() }

func fillFrom(b *BuildInfo, bi *debug.BuildInfo) {
	b.Go = bi.GoVersion
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "none":
			b.Commit = s.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = s.Value
		}
	}
}
