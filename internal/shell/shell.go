// Package shell runs the short-lived platform commands the discovery
// pipeline depends on, with hard timeouts so a wedged tool fails the stage
// instead of hanging it.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RunFunc is the signature stages use to execute a platform command. It is a
// function value so tests can substitute canned output.
type RunFunc func(ctx context.Context, timeout time.Duration, argv []string) (string, error)

// Output runs argv and returns its stdout. The command is killed when
// timeout elapses; timeouts and non-zero exits both come back as errors with
// the interesting part of stderr attached.
func Output(ctx context.Context, timeout time.Duration, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s timed out after %s", argv[0], timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", argv[0], err)
	}
	return stdout.String(), nil
}
