package main

import (
	"runtime/debug"
)

// set with -ldflags "-X main.appVer=..."
var appVer = ""

// appVersion prefers the module version recorded by `go install`, then the
// ldflags-injected one.
func appVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	if appVer != "" {
		return appVer
	}
	return "#UNAVAILABLE"
}
