package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// windowsStrategy uses wmic for process listing and netstat for listening
// sockets. wmic is deprecated but still the one invocation that prints full
// command lines on every supported Windows build without a PowerShell
// startup penalty.
type windowsStrategy struct {
	name string
}

func newWindows(name string) *windowsStrategy {
	if name == "" {
		name = DefaultProcessName + ".exe"
	}
	return &windowsStrategy{name: name}
}

func (s *windowsStrategy) ProcessName() string { return s.name }

func (s *windowsStrategy) ListProcessesCommand(name string) []string {
	return []string{"cmd", "/c",
		fmt.Sprintf(`wmic process where "name='%s'" get CommandLine,ProcessId /format:list`, name)}
}

func (s *windowsStrategy) ListListeningPortsCommand(pid int) []string {
	return []string{"cmd", "/c",
		fmt.Sprintf("netstat -ano -p TCP | findstr LISTENING | findstr %d", pid)}
}

// ParseProcessInfo reads wmic /format:list output: blank-line separated
// records of Key=Value lines, e.g.
//
//	CommandLine=C:\...\langd.exe --http-port=51000 --session-token=abc
//	ProcessId=4321
func (s *windowsStrategy) ParseProcessInfo(raw string) *ProcessInfo {
	var cmdline string
	var pid int
	flush := func() *ProcessInfo {
		defer func() { cmdline, pid = "", 0 }()
		if pid <= 0 || !strings.Contains(cmdline, s.name) {
			return nil
		}
		port, token, ok := parseDaemonArgs(cmdline)
		if !ok {
			return nil
		}
		return &ProcessInfo{PID: pid, DeclaredPort: port, Token: token}
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if info := flush(); info != nil {
				return info
			}
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "CommandLine":
			cmdline = val
		case "ProcessId":
			pid, _ = strconv.Atoi(strings.TrimSpace(val))
		}
	}
	return flush()
}

// ParseListeningPorts reads netstat -ano lines:
//
//	TCP    127.0.0.1:51000    0.0.0.0:0    LISTENING    4321
func (s *windowsStrategy) ParseListeningPorts(raw string) []int {
	var ports []int
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != "TCP" || fields[3] != "LISTENING" {
			continue
		}
		if p, ok := portFromAddr(fields[1]); ok {
			ports = append(ports, p)
		}
	}
	return dedupPorts(ports)
}

func (s *windowsStrategy) Diagnostics() Diagnostics {
	return Diagnostics{
		ProcessNotFound: fmt.Sprintf(
			"No running %s process was found. Start your editor's language-server integration and retry.", s.name),
		CommandUnavailable: "Process inspection requires wmic and netstat on PATH.",
		Requirements:       []string{"cmd", "wmic", "netstat", "findstr"},
	}
}
