// Package version holds the build version, set with -ldflags.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/ppimalaysia/regform/pkg/version.Version=v1.2.0"
var Version = "v0.1.0-dev"
