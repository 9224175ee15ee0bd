// Package version exposes the txbench build version.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// version is set at build time with -ldflags "-X github.com/rshade/txbench/pkg/version.version=...".
var version = "0.1.0-dev" //nolint:gochecknoglobals // Overridden by the linker.

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}

// Semver parses the build version. It returns nil if the linker set a non-semver value.
func Semver() *semver.Version {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	return v
}
