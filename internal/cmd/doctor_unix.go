//go:build !windows

package cmd

import (
	"strings"

	"golang.org/x/sys/unix"
)

// kernelVersion reports the running kernel release for doctor output.
func kernelVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "unknown"
	}
	return unix.ByteSliceToString(uts.Release[:]) + " " + strings.TrimSpace(unix.ByteSliceToString(uts.Machine[:]))
}
