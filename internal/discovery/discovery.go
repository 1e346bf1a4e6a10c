// Package discovery sequences the credential-discovery pipeline: locate the
// daemon process, enumerate its listening ports, probe candidates in order,
// and retry the whole pipeline with a fixed backoff when any stage fails.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dsmmcken/lsc/internal/locator"
	"github.com/dsmmcken/lsc/internal/platform"
	"github.com/dsmmcken/lsc/internal/ports"
	"github.com/dsmmcken/lsc/internal/probe"
)

// Credentials is the verified connection bundle and the only artifact that
// leaves this package on success. ExtensionPort is what the daemon declared
// at launch; ConnectPort is the port that actually answered the liveness
// probe. The two carry no fixed relationship.
type Credentials struct {
	ExtensionPort int    `json:"extension_port"`
	ConnectPort   int    `json:"connect_port"`
	Token         string `json:"token"`
}

// Stage identifies where in the pipeline an event happened.
type Stage string

const (
	StageLocate    Stage = "locate"
	StageEnumerate Stage = "enumerate"
	StageProbe     Stage = "probe"
	StageSuccess   Stage = "success"
	StageRetry     Stage = "retry"
	StageGiveUp    Stage = "give-up"
)

// Reason classifies why an attempt failed. All reasons are recoverable
// within the retry budget.
type Reason string

const (
	ReasonCommandFailed    Reason = "command-failed"
	ReasonProcessNotFound  Reason = "process-not-found"
	ReasonNoListeningPorts Reason = "no-listening-ports"
	ReasonNoWorkingPort    Reason = "no-working-port"
)

// Event is an observational progress record for presentation layers. Events
// carry no control semantics.
type Event struct {
	Attempt int
	Stage   Stage
	Reason  Reason // set on failure events
	Detail  string
}

// NotFoundError is the terminal outcome after the retry budget is spent.
// Callers treat it as "no credentials available right now", never as a
// crash.
type NotFoundError struct {
	Attempts   int
	LastReason Reason
	Guidance   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("discovery failed after %d attempt(s): %s", e.Attempts, e.LastReason)
}

// Options tune the retry policy.
type Options struct {
	MaxAttempts int           // default 3
	RetryDelay  time.Duration // between failed attempts, default 2s
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}

// DefaultOptions returns the standard retry policy.
func DefaultOptions() Options {
	return Options{MaxAttempts: 3, RetryDelay: 2 * time.Second}
}

// Discoverer runs the pipeline. It holds no state across Discover calls, so
// one Discoverer may serve concurrent invocations.
type Discoverer struct {
	locate    func(context.Context) (*platform.ProcessInfo, error)
	listPorts func(context.Context, int) []int
	probe     func(context.Context, int, string) bool
	sleep     func(time.Duration)
	observer  func(Event)
	guidance  platform.Diagnostics
	opts      Options
	log       *logrus.Entry
}

// New wires the real pipeline stages for the given platform strategy.
// observer may be nil.
func New(strategy platform.Strategy, opts Options, observer func(Event)) *Discoverer {
	return &Discoverer{
		locate:    locator.New(strategy).Locate,
		listPorts: ports.New(strategy).List,
		probe:     probe.New().Probe,
		sleep:     time.Sleep,
		observer:  observer,
		guidance:  strategy.Diagnostics(),
		opts:      opts.withDefaults(),
		log:       logrus.WithField("component", "discovery"),
	}
}

func (d *Discoverer) emit(e Event) {
	d.log.WithFields(logrus.Fields{
		"attempt": e.Attempt,
		"stage":   e.Stage,
		"reason":  e.Reason,
	}).Debug(e.Detail)
	if d.observer != nil {
		d.observer(e)
	}
}

// Discover runs up to MaxAttempts full pipeline passes and returns the first
// verified credential bundle. Every attempt restarts from the locator; no
// PID or port list survives an attempt boundary, since the daemon may have
// restarted in between. The terminal failure is a *NotFoundError.
func (d *Discoverer) Discover(ctx context.Context) (*Credentials, error) {
	var lastReason Reason
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		creds, reason := d.attempt(ctx, attempt)
		if creds != nil {
			d.emit(Event{Attempt: attempt, Stage: StageSuccess,
				Detail: fmt.Sprintf("confirmed port %d", creds.ConnectPort)})
			return creds, nil
		}
		lastReason = reason
		if attempt < d.opts.MaxAttempts {
			d.emit(Event{Attempt: attempt, Stage: StageRetry, Reason: reason,
				Detail: fmt.Sprintf("retrying in %s", d.opts.RetryDelay)})
			d.sleep(d.opts.RetryDelay)
		}
	}
	d.emit(Event{Attempt: d.opts.MaxAttempts, Stage: StageGiveUp, Reason: lastReason})
	return nil, &NotFoundError{
		Attempts:   d.opts.MaxAttempts,
		LastReason: lastReason,
		Guidance:   d.guidanceFor(lastReason),
	}
}

// attempt runs one locate → enumerate → probe pass. It returns credentials
// on success, otherwise the reason the pass failed.
func (d *Discoverer) attempt(ctx context.Context, n int) (*Credentials, Reason) {
	d.emit(Event{Attempt: n, Stage: StageLocate})
	info, err := d.locate(ctx)
	if err != nil {
		return nil, classify(err)
	}

	d.emit(Event{Attempt: n, Stage: StageEnumerate, Detail: fmt.Sprintf("pid %d", info.PID)})
	candidates := d.listPorts(ctx, info.PID)
	if len(candidates) == 0 {
		return nil, ReasonNoListeningPorts
	}

	// Candidates are probed strictly in report order, one at a time, and the
	// first hit wins. Parallel probing is off the table: it can trip rate
	// limits on the real service.
	for _, port := range candidates {
		d.emit(Event{Attempt: n, Stage: StageProbe, Detail: fmt.Sprintf("port %d", port)})
		if d.probe(ctx, port, info.Token) {
			declared := info.DeclaredPort
			if declared == 0 {
				// Daemon launched without --http-port; the confirmed port is
				// the only one we know.
				declared = port
			}
			return &Credentials{
				ExtensionPort: declared,
				ConnectPort:   port,
				Token:         info.Token,
			}, ""
		}
	}
	return nil, ReasonNoWorkingPort
}

func classify(err error) Reason {
	var nf *locator.NotFoundError
	if errors.As(err, &nf) {
		return ReasonProcessNotFound
	}
	return ReasonCommandFailed
}

func (d *Discoverer) guidanceFor(reason Reason) string {
	switch reason {
	case ReasonProcessNotFound, ReasonNoListeningPorts, ReasonNoWorkingPort:
		return d.guidance.ProcessNotFound
	case ReasonCommandFailed:
		return d.guidance.CommandUnavailable
	default:
		return ""
	}
}
