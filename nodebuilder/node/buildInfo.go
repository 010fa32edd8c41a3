package node

import (
	"fmt"
	"runtime"
)

const emptyValue = "unknown"

// these are set at build time through ldflags
var (
	buildTime       string
	lastCommit      string
	semanticVersion string
)

// BuildInfo stores all necessary information for the current build.
type BuildInfo struct {
	BuildTime       string
	LastCommit      string
	SemanticVersion string
	SystemVersion   string
	GolangVersion   string
}

// GetBuildInfo returns information about the running binary.
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		BuildTime:       buildTime,
		LastCommit:      lastCommit,
		SemanticVersion: semanticVersion,
		SystemVersion:   fmt.Sprintf("%s/%s", runtime.GOARCH, runtime.GOOS),
		GolangVersion:   runtime.Version(),
	}
}

// GetSemanticVersion returns the semantic version prefixed with "v".
func (b *BuildInfo) GetSemanticVersion() string {
	if b.SemanticVersion == "" {
		return emptyValue
	}
	return "v" + b.SemanticVersion
}

// CommitShortSha returns the first seven characters of the last commit.
func (b *BuildInfo) CommitShortSha() string {
	if b.LastCommit == "" {
		return emptyValue
	}
	if len(b.LastCommit) < 7 {
		return b.LastCommit
	}
	return b.LastCommit[:7]
}

func (b *BuildInfo) String() string {
	return fmt.Sprintf(
		"Semantic version: %s\nCommit: %s\nBuild Date: %s\nSystem version: %s\nGolang version: %s\n",
		b.GetSemanticVersion(),
		b.CommitShortSha(),
		b.BuildTime,
		b.SystemVersion,
		b.GolangVersion,
	)
}
