//go:build windows

package cmd

import "os"

// kernelVersion reports a coarse environment marker; Windows has no uname.
func kernelVersion() string {
	if v := os.Getenv("OS"); v != "" {
		return v
	}
	return "windows"
}
