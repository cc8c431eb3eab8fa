// Package version provides build and version information for the UPDL engine.
package version

// Version is the current release version of the UPDL engine.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/universo-platformo/updl-engine/internal/version.Version=x.y.z"
var Version = "0.3.0"
