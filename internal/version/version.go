// Package version holds the build version reported by GET /version.
package version

// Version is overridden at link time:
//
//	go build -ldflags "-X github.com/sakif/prompt2json/internal/version.Version=1.2.3"
var Version = "1.0.0"
