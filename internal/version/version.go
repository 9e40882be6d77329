// Package version reports the build version, set via ldflags or
// recovered from module build info.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	-ldflags "-X bennypowers.dev/csslens/internal/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String returns the best available version string.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}

// Full returns the version with commit and build date when known.
func Full() string {
	s := String()
	if Commit != "" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		s = fmt.Sprintf("%s (%s)", s, short)
	}
	if Date != "" {
		s = fmt.Sprintf("%s built %s", s, Date)
	}
	return s
}
