//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package version provides build and version information for pgedge-starload.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

// Build information set at compile time via ldflags. Commit and BuildDate
// fall back to the VCS stamp of the module build when left unset.
var (
	Version   = "0.1.0"
	Commit    = unknown
	BuildDate = unknown
)

var stampOnce sync.Once

// stamp fills Commit and BuildDate from the embedded build info.
func stamp() {
	stampOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fillFromSettings(info.Settings)
	})
}

func fillFromSettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == unknown && s.Value != "" {
				Commit = s.Value
				if len(Commit) > 12 {
					Commit = Commit[:12]
				}
			}
		case "vcs.time":
			if BuildDate == unknown && s.Value != "" {
				BuildDate = s.Value
			}
		}
	}
}

// Info returns formatted version information.
func Info() string {
	stamp()
	return fmt.Sprintf(
		"pgedge-starload %s (commit: %s, built: %s, go: %s)",
		Version, Commit, BuildDate, runtime.Version(),
	)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// Metadata returns the build fields recorded in a warehouse when it is
// initialized.
func Metadata() map[string]string {
	stamp()
	return map[string]string{
		"version": Version,
		"commit":  Commit,
	}
}
