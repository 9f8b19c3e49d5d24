// Package app provides the application container wiring configuration,
// storage, repositories and services together.
package app

// Build-time injected version information.
var (
	Version   string = "1.2.0"
	GitTag    string = "2000.01.01.release"
	BuildTime string = "2000-01-01T00:00:00+0800"
)

const (
	// Name is the service name reported in headers and logs.
	Name = "Flow Version Service"
)
