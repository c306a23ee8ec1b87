// Package version exposes the build version baked into the binary at
// compile time.
package version

import (
	_ "embed"
)

//go:embed VERSION
var Version string

// Get returns the version string shipped with this build.
func Get() string {
	return Version
}
