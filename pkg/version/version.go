// Package version provides the build information of the accelerator runtime.
package version

import "runtime"

var (
	// Package is filled at linking time
	Package = "github.com/zrs-products/accel-report"

	// Version holds the complete version number. Filled in at linking time.
	Version = "0.1.0+unknown"

	// Revision is filled with the VCS (e.g. git) revision being used to build
	// the program at linking time.
	Revision = ""

	// GoVersion is Go tree's version.
	GoVersion = runtime.Version()
)
