// Package build holds version and debug/development flag state shared
// across atomicimage's packages.
package build

import (
	"fmt"
	"os"
)

const (
	// VersionMajor represents the current major version of atomicimage.
	VersionMajor = 0
	// VersionMinor represents the current minor version of atomicimage.
	VersionMinor = 1
	// VersionPatch represents the current patch version of atomicimage.
	VersionPatch = 0
)

// Version is the full dotted version string.
var Version string

// DebugEnabled controls whether debug-level logging is enabled. It is set
// automatically based on the ATOMICIMAGE_DEBUG environment variable.
var DebugEnabled bool

// DevelopmentModeEnabled controls whether development mode is enabled. It is
// set automatically based on the ATOMICIMAGE_DEVELOPMENT environment
// variable.
var DevelopmentModeEnabled bool

func init() {
	Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	DebugEnabled = os.Getenv("ATOMICIMAGE_DEBUG") == "1"
	DevelopmentModeEnabled = os.Getenv("ATOMICIMAGE_DEVELOPMENT") == "1"
}
