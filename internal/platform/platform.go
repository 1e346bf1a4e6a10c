package platform

import (
	"regexp"
	"runtime"
	"strconv"
)

// DefaultProcessName is the daemon binary name lsc searches for.
// Windows strategies append ".exe".
const DefaultProcessName = "langd"

// ProcessInfo is what a strategy extracts from one matching process record.
type ProcessInfo struct {
	PID int
	// DeclaredPort is the --http-port value from the daemon's command line,
	// or 0 when the flag was absent. It is a hint, not a verified port.
	DeclaredPort int
	Token        string
}

// Diagnostics holds human-readable guidance for surfaced failures.
// It never drives control flow.
type Diagnostics struct {
	ProcessNotFound    string
	CommandUnavailable string
	// Requirements lists the external executables the strategy shells out to.
	Requirements []string
}

// Strategy is the per-OS capability set: the shell commands to run and the
// parsers for their output. Nothing outside this package knows OS-specific
// command syntax or output formats.
type Strategy interface {
	// ProcessName returns the OS-appropriate daemon binary name.
	ProcessName() string

	// ListProcessesCommand returns the argv that prints the full command
	// line of every running process matching name.
	ListProcessesCommand(name string) []string

	// ListListeningPortsCommand returns the argv that prints the listening
	// sockets owned by pid.
	ListListeningPortsCommand(pid int) []string

	// ParseProcessInfo extracts the first matching process record from raw
	// command output. Returns nil when no record matches or a required
	// field (PID, token) is missing.
	ParseProcessInfo(raw string) *ProcessInfo

	// ParseListeningPorts extracts all distinct listening port numbers from
	// raw command output. Returns an empty slice on no matches; never fails.
	ParseListeningPorts(raw string) []int

	Diagnostics() Diagnostics
}

// Current returns the strategy for the running OS. processName overrides the
// daemon name to search for; empty selects the per-OS default. Callers pick
// the strategy once at startup and pass it down.
func Current(processName string) Strategy {
	return ForOS(runtime.GOOS, processName)
}

// ForOS returns the strategy for a given GOOS value. Exported for testing.
func ForOS(goos, processName string) Strategy {
	switch goos {
	case "windows":
		return newWindows(processName)
	case "darwin":
		return newDarwin(processName)
	default:
		// Linux and the remaining unixes share the procps/ss toolchain.
		return newLinux(processName)
	}
}

// Daemon command-line flags. Both values may be given as --flag=value or
// --flag value.
var (
	httpPortFlag = regexp.MustCompile(`--http-port(?:=|\s+)(\d+)`)
	tokenFlag    = regexp.MustCompile(`--session-token(?:=|\s+)(\S+)`)
)

// parseDaemonArgs extracts the declared port and session token from a
// daemon command line. ok is false when the token is missing or empty.
func parseDaemonArgs(args string) (port int, token string, ok bool) {
	if m := tokenFlag.FindStringSubmatch(args); m != nil {
		token = m[1]
	}
	if token == "" {
		return 0, "", false
	}
	if m := httpPortFlag.FindStringSubmatch(args); m != nil {
		// The regex only admits digits; huge values still fail Atoi.
		if p, err := strconv.Atoi(m[1]); err == nil {
			port = p
		}
	}
	return port, token, true
}

// dedupPorts keeps the first occurrence of each port, preserving report
// order as a probing priority hint.
func dedupPorts(ports []int) []int {
	seen := make(map[int]bool, len(ports))
	out := ports[:0]
	for _, p := range ports {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
