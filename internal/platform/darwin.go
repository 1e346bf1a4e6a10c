package platform

import (
	"fmt"
	"regexp"
	"strconv"
)

// darwinStrategy uses ps for process listing like linux, but lsof for
// listening sockets since macOS ships no ss.
type darwinStrategy struct {
	name string
}

func newDarwin(name string) *darwinStrategy {
	if name == "" {
		name = DefaultProcessName
	}
	return &darwinStrategy{name: name}
}

func (s *darwinStrategy) ProcessName() string { return s.name }

// ListProcessesCommand lists every process; ParseProcessInfo does the name
// matching. A grep in the pipeline would exit 1 when the daemon is simply
// not running, which is a not-found condition, not a command failure.
func (s *darwinStrategy) ListProcessesCommand(name string) []string {
	return []string{"ps", "ax", "-o", "pid=,args="}
}

func (s *darwinStrategy) ListListeningPortsCommand(pid int) []string {
	return []string{"lsof", "-nP", "-iTCP", "-sTCP:LISTEN", "-a", "-p", strconv.Itoa(pid)}
}

func (s *darwinStrategy) ParseProcessInfo(raw string) *ProcessInfo {
	return parsePSOutput(raw, s.name)
}

// lsofListen matches "TCP 127.0.0.1:51000 (LISTEN)" and "TCP *:51000 (LISTEN)".
var lsofListen = regexp.MustCompile(`TCP\s+\S*:(\d+)\s+\(LISTEN\)`)

func (s *darwinStrategy) ParseListeningPorts(raw string) []int {
	var ports []int
	for _, m := range lsofListen.FindAllStringSubmatch(raw, -1) {
		if p, err := strconv.Atoi(m[1]); err == nil {
			ports = append(ports, p)
		}
	}
	return dedupPorts(ports)
}

func (s *darwinStrategy) Diagnostics() Diagnostics {
	return Diagnostics{
		ProcessNotFound: fmt.Sprintf(
			"No running %s process was found. Start your editor's language-server integration and retry.", s.name),
		CommandUnavailable: "Process inspection requires ps and lsof on PATH (both ship with macOS).",
		Requirements:       []string{"ps", "lsof"},
	}
}
