// Package ports enumerates the listening sockets of a given PID.
package ports

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/lsc/internal/platform"
	"github.com/dsmmcken/lsc/internal/shell"
)

// commandTimeout bounds the port-listing command.
const commandTimeout = 3 * time.Second

// Enumerator runs the platform's port-listing command for one PID.
type Enumerator struct {
	strategy platform.Strategy
	run      shell.RunFunc
	log      *logrus.Entry
}

func New(strategy platform.Strategy) *Enumerator {
	return &Enumerator{
		strategy: strategy,
		run:      shell.Output,
		log:      logrus.WithField("component", "ports"),
	}
}

// List returns the distinct listening ports of pid, in report order. It
// never fails: command or parse trouble is logged and comes back as an empty
// slice, which the caller treats the same as a process with no sockets.
func (e *Enumerator) List(ctx context.Context, pid int) []int {
	argv := e.strategy.ListListeningPortsCommand(pid)
	out, err := e.run(ctx, commandTimeout, argv)
	if err != nil {
		e.log.WithError(err).WithField("pid", pid).Debug("port listing failed")
		return nil
	}
	found := e.strategy.ParseListeningPorts(out)
	e.log.WithFields(logrus.Fields{"pid": pid, "ports": found}).Debug("enumerated listening ports")
	return found
}
