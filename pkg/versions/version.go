// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package versions provides build version information.
package versions

import (
	"fmt"
	"runtime"
	"time"
)

const unknownStr = "unknown"

// Set via ldflags at build time.
var (
	// Version is the semantic version of the release, or "dev".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = unknownStr
	// BuildDate is the RFC3339 build timestamp.
	BuildDate = unknownStr
)

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information of the running binary. Dev
// builds are labeled with a short commit hash when one is available.
func GetVersionInfo() VersionInfo {
	version := Version
	if version == "dev" {
		commit := Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		version = "build-" + commit
	}

	buildDate := BuildDate
	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 UTC")
	}

	return VersionInfo{
		Version:   version,
		Commit:    Commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
