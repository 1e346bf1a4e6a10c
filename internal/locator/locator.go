// Package locator finds the running language-server daemon in the process
// table and extracts its PID, declared port, and session token.
package locator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/lsc/internal/platform"
	"github.com/dsmmcken/lsc/internal/shell"
)

// commandTimeout bounds the process-listing command.
const commandTimeout = 5 * time.Second

// NotFoundError means the process listing succeeded but contained no record
// with the daemon name and a session token.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no running %s process found", e.Name)
}

// CommandError means the process-listing command itself failed (timeout,
// non-zero exit, or the tool is missing).
type CommandError struct {
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("listing processes: %v", e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Locator runs the platform's process-listing command and parses the result.
type Locator struct {
	strategy platform.Strategy
	run      shell.RunFunc
	log      *logrus.Entry
}

func New(strategy platform.Strategy) *Locator {
	return &Locator{
		strategy: strategy,
		run:      shell.Output,
		log:      logrus.WithField("component", "locator"),
	}
}

// Locate returns the first matching daemon process, or *CommandError /
// *NotFoundError. It holds no state; each call is a fresh inspection.
func (l *Locator) Locate(ctx context.Context) (*platform.ProcessInfo, error) {
	name := l.strategy.ProcessName()
	argv := l.strategy.ListProcessesCommand(name)

	out, err := l.run(ctx, commandTimeout, argv)
	if err != nil {
		l.log.WithError(err).Debug("process listing failed")
		return nil, &CommandError{Err: err}
	}

	info := l.strategy.ParseProcessInfo(out)
	if info == nil {
		return nil, &NotFoundError{Name: name}
	}
	l.log.WithFields(logrus.Fields{
		"pid":           info.PID,
		"declared_port": info.DeclaredPort,
	}).Debug("located daemon process")
	return info, nil
}
