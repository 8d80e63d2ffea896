// Package version reports the simulator build.
//
// Version and Commit are set at link time; otherwise the commit and dirty
// flag come from the VCS stamp the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/ticksim/version.Version=0.3.0"
package version
