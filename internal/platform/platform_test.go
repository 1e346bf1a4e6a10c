package platform

import (
	"reflect"
	"testing"
)

func TestForOS_SelectsStrategyAndName(t *testing.T) {
	tests := []struct {
		goos     string
		override string
		wantName string
	}{
		{"linux", "", "langd"},
		{"darwin", "", "langd"},
		{"windows", "", "langd.exe"},
		{"freebsd", "", "langd"},
		{"linux", "myserver", "myserver"},
		{"windows", "myserver.exe", "myserver.exe"},
	}
	for _, tt := range tests {
		s := ForOS(tt.goos, tt.override)
		if s == nil {
			t.Fatalf("ForOS(%q) returned nil", tt.goos)
		}
		if got := s.ProcessName(); got != tt.wantName {
			t.Errorf("ForOS(%q, %q).ProcessName() = %q, want %q", tt.goos, tt.override, got, tt.wantName)
		}
	}
}

func TestListProcessesCommand_NoFilterPipeline(t *testing.T) {
	// The listing command must succeed even when the daemon is not running,
	// so an absent daemon parses to a not-found result instead of surfacing
	// as a failed command. A grep stage would exit 1 on zero matches.
	want := []string{"ps", "ax", "-o", "pid=,args="}
	for _, goos := range []string{"linux", "darwin"} {
		s := ForOS(goos, "")
		got := s.ListProcessesCommand(s.ProcessName())
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ForOS(%q).ListProcessesCommand() = %v, want %v", goos, got, want)
		}
	}
}

func TestParsePSOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *ProcessInfo
	}{
		{
			name: "full record",
			raw:  " 4321 /usr/local/bin/langd --http-port=51000 --session-token=abc123 --stdio\n",
			want: &ProcessInfo{PID: 4321, DeclaredPort: 51000, Token: "abc123"},
		},
		{
			name: "space separated flags",
			raw:  "77 /opt/langd --http-port 6200 --session-token tok-9\n",
			want: &ProcessInfo{PID: 77, DeclaredPort: 6200, Token: "tok-9"},
		},
		{
			name: "port flag absent",
			raw:  "88 /opt/langd --session-token=secret\n",
			want: &ProcessInfo{PID: 88, DeclaredPort: 0, Token: "secret"},
		},
		{
			name: "token missing skips record",
			raw:  "88 /opt/langd --http-port=6200\n",
			want: nil,
		},
		{
			name: "no matching process",
			raw:  " 12 /usr/bin/vim main.go\n 13 /bin/bash\n",
			want: nil,
		},
		{
			name: "grep artifact ignored",
			raw:  " 99 grep -F langd\n",
			want: nil,
		},
		{
			name: "first match wins",
			raw: " 10 /bin/langd --http-port=1 --session-token=first\n" +
				" 11 /bin/langd --http-port=2 --session-token=second\n",
			want: &ProcessInfo{PID: 10, DeclaredPort: 1, Token: "first"},
		},
		{
			name: "empty output",
			raw:  "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePSOutput(tt.raw, "langd")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePSOutput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLinuxParseListeningPorts(t *testing.T) {
	s := newLinux("")
	raw := `LISTEN 0 4096   127.0.0.1:51000   0.0.0.0:* users:(("langd",pid=4321,fd=23))
LISTEN 0 4096   [::1]:51001       [::]:*    users:(("langd",pid=4321,fd=24))
LISTEN 0 4096   127.0.0.1:51000   0.0.0.0:* users:(("langd",pid=4321,fd=25))
ESTAB  0 0      127.0.0.1:51000   127.0.0.1:39000
garbage line
`
	got := s.ParseListeningPorts(raw)
	want := []int{51000, 51001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListeningPorts() = %v, want %v", got, want)
	}
}

func TestDarwinParseListeningPorts(t *testing.T) {
	s := newDarwin("")
	raw := `COMMAND  PID USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
langd   4321 dev   23u  IPv4 0xabc      0t0  TCP 127.0.0.1:51000 (LISTEN)
langd   4321 dev   24u  IPv6 0xdef      0t0  TCP *:51001 (LISTEN)
langd   4321 dev   25u  IPv4 0x123      0t0  TCP 127.0.0.1:51000 (LISTEN)
`
	got := s.ParseListeningPorts(raw)
	want := []int{51000, 51001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListeningPorts() = %v, want %v", got, want)
	}
}

func TestDarwinParseListeningPorts_Empty(t *testing.T) {
	if got := newDarwin("").ParseListeningPorts("no sockets here"); len(got) != 0 {
		t.Errorf("expected no ports, got %v", got)
	}
}

func TestWindowsParseProcessInfo(t *testing.T) {
	s := newWindows("")
	raw := "\r\n" +
		"CommandLine=C:\\Tools\\langd.exe --http-port=51000 --session-token=abc123\r\n" +
		"ProcessId=4321\r\n" +
		"\r\n"
	got := s.ParseProcessInfo(raw)
	want := &ProcessInfo{PID: 4321, DeclaredPort: 51000, Token: "abc123"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseProcessInfo() = %+v, want %+v", got, want)
	}
}

func TestWindowsParseProcessInfo_NoToken(t *testing.T) {
	s := newWindows("")
	raw := "CommandLine=C:\\Tools\\langd.exe --http-port=51000\r\nProcessId=4321\r\n"
	if got := s.ParseProcessInfo(raw); got != nil {
		t.Errorf("expected nil for record without token, got %+v", got)
	}
}

func TestWindowsParseProcessInfo_SecondRecordMatches(t *testing.T) {
	s := newWindows("")
	raw := "CommandLine=C:\\Other\\tool.exe\r\nProcessId=1\r\n\r\n" +
		"CommandLine=C:\\Tools\\langd.exe --session-token=tok\r\nProcessId=2\r\n"
	got := s.ParseProcessInfo(raw)
	want := &ProcessInfo{PID: 2, DeclaredPort: 0, Token: "tok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseProcessInfo() = %+v, want %+v", got, want)
	}
}

func TestWindowsParseListeningPorts(t *testing.T) {
	s := newWindows("")
	raw := `
  TCP    127.0.0.1:51000        0.0.0.0:0              LISTENING       4321
  TCP    [::1]:51001            [::]:0                 LISTENING       4321
  TCP    127.0.0.1:51000        0.0.0.0:0              LISTENING       4321
  UDP    0.0.0.0:500            *:*                                    1234
`
	got := s.ParseListeningPorts(raw)
	want := []int{51000, 51001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListeningPorts() = %v, want %v", got, want)
	}
}

func TestParseDaemonArgs_TokenRequired(t *testing.T) {
	if _, _, ok := parseDaemonArgs("/bin/langd --http-port=1"); ok {
		t.Error("expected ok=false without a token")
	}
	port, token, ok := parseDaemonArgs("/bin/langd --session-token=t1")
	if !ok || token != "t1" || port != 0 {
		t.Errorf("got port=%d token=%q ok=%v", port, token, ok)
	}
}
