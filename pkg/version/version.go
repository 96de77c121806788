package version

import (
	"fmt"
	"runtime"
)

// These variables are populated by the build process
var (
	// Version is the version of the build
	Version = "dev"
	// BuildTime is the time when the build was created
	BuildTime = "unknown"
)

// GetVersionInfo returns a formatted string with version information,
// including the pointer width the direct pipeline reads addresses at.
func GetVersionInfo() string {
	return fmt.Sprintf("memview v%s (built: %s, %s/%s, %d-bit)",
		Version,
		BuildTime,
		runtime.GOOS,
		runtime.GOARCH,
		32<<(^uintptr(0)>>63),
	)
}

// GetVersion returns just the version number
func GetVersion() string {
	return Version
}
