// Package version reports the build version of the blizzardprep command.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/speechprep/version.Version=1.0.0"
//
// Values left empty fall back to the VCS stamp in the binary's build info.
package version
