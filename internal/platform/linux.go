package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// linuxStrategy shells out to ps for process listing and ss for listening
// sockets. No build tag: parsers are pure and unit-tested on every OS.
type linuxStrategy struct {
	name string
}

func newLinux(name string) *linuxStrategy {
	if name == "" {
		name = DefaultProcessName
	}
	return &linuxStrategy{name: name}
}

func (s *linuxStrategy) ProcessName() string { return s.name }

// ListProcessesCommand lists every process; ParseProcessInfo does the name
// matching. A grep in the pipeline would exit 1 when the daemon is simply
// not running, which is a not-found condition, not a command failure.
func (s *linuxStrategy) ListProcessesCommand(name string) []string {
	return []string{"ps", "ax", "-o", "pid=,args="}
}

func (s *linuxStrategy) ListListeningPortsCommand(pid int) []string {
	// The trailing comma anchors the match so pid=42 does not match pid=421.
	return []string{"/bin/sh", "-c",
		fmt.Sprintf("ss -tlnp | grep 'pid=%d,'", pid)}
}

func (s *linuxStrategy) ParseProcessInfo(raw string) *ProcessInfo {
	return parsePSOutput(raw, s.name)
}

func (s *linuxStrategy) ParseListeningPorts(raw string) []int {
	// ss -tln lines: "LISTEN 0 4096 127.0.0.1:51000 0.0.0.0:* users:(...)".
	// The local address is the fourth column; the port follows its last colon.
	var ports []int
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] != "LISTEN" {
			continue
		}
		if p, ok := portFromAddr(fields[3]); ok {
			ports = append(ports, p)
		}
	}
	return dedupPorts(ports)
}

func (s *linuxStrategy) Diagnostics() Diagnostics {
	return Diagnostics{
		ProcessNotFound: fmt.Sprintf(
			"No running %s process was found. Start your editor's language-server integration and retry.", s.name),
		CommandUnavailable: "Process inspection requires ps and ss (package procps/iproute2) on PATH.",
		Requirements:       []string{"sh", "ps", "ss", "grep"},
	}
}

// parsePSOutput scans "ps ax -o pid=,args=" style output for the first line
// whose command matches name, then pulls the daemon flags out of it.
// Shared by the linux and darwin strategies.
func parsePSOutput(raw, name string) *ProcessInfo {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pidStr, args, found := strings.Cut(line, " ")
		if !found {
			continue
		}
		pid, err := strconv.Atoi(pidStr)
		if err != nil || pid <= 0 {
			continue
		}
		args = strings.TrimSpace(args)
		// The listing command filters grep out of its own pipeline, but the
		// parser must hold on raw output from anywhere.
		if !strings.Contains(args, name) || strings.Contains(args, "grep") {
			continue
		}
		port, token, ok := parseDaemonArgs(args)
		if !ok {
			continue
		}
		return &ProcessInfo{PID: pid, DeclaredPort: port, Token: token}
	}
	return nil
}

// portFromAddr extracts the port from "127.0.0.1:51000", "[::1]:51000" or
// "*:51000" forms.
func portFromAddr(addr string) (int, bool) {
	i := strings.LastIndex(addr, ":")
	if i < 0 || i == len(addr)-1 {
		return 0, false
	}
	p, err := strconv.Atoi(addr[i+1:])
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}
