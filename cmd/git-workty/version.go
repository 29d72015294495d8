package main

import (
	"runtime/debug"
	"strings"
)

// version is set at release time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

var readBuildInfo = debug.ReadBuildInfo

func currentVersion() string {
	if v := strings.TrimSpace(version); v != "" && v != "dev" {
		return v
	}

	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if mv := strings.TrimSpace(info.Main.Version); mv != "" && mv != "(devel)" {
		return mv
	}
	if rev := buildSetting(info, "vcs.revision"); rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if buildSetting(info, "vcs.modified") == "true" {
			rev += "-dirty"
		}
		return "dev+" + rev
	}
	return "dev"
}

func buildSetting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return strings.TrimSpace(s.Value)
		}
	}
	return ""
}
