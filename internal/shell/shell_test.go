package shell

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test commands use sh")
	}
}

func TestOutput_ReturnsStdout(t *testing.T) {
	skipOnWindows(t)
	out, err := Output(context.Background(), 5*time.Second, []string{"sh", "-c", "echo hello"})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Output() = %q, want %q", out, "hello")
	}
}

func TestOutput_TimeoutKillsCommand(t *testing.T) {
	skipOnWindows(t)
	start := time.Now()
	_, err := Output(context.Background(), 50*time.Millisecond, []string{"sleep", "5"})
	if err == nil {
		t.Fatal("Output() succeeded, want timeout error")
	}
	if !strings.Contains(err.Error(), "timed out after") {
		t.Errorf("error = %v, want a timed-out message", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("command ran %v, was not killed at the timeout", elapsed)
	}
}

func TestOutput_NonZeroExitSurfacesStderr(t *testing.T) {
	skipOnWindows(t)
	_, err := Output(context.Background(), 5*time.Second, []string{"sh", "-c", "echo boom >&2; exit 3"})
	if err == nil {
		t.Fatal("Output() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %v, want stderr content attached", err)
	}
}

func TestOutput_EmptyCommand(t *testing.T) {
	if _, err := Output(context.Background(), time.Second, nil); err == nil {
		t.Error("Output(nil) succeeded, want error")
	}
}
