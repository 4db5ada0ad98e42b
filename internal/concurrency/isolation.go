package concurrency

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gilbench/gilbench/internal/workloads"
)

// Isolation is a facility for creating execution contexts that share no
// mutable state with the caller.
type Isolation interface {
	Name() string
	// Available returns an error describing why the facility cannot be used.
	Available() error
}

// Creator is implemented by isolation facilities that can create contexts.
type Creator interface {
	Create(ctx context.Context) (IsolatedContext, error)
}

// IsolatedContext runs worker requests. Close releases it.
type IsolatedContext interface {
	Run(ctx context.Context, req WorkerRequest) error
	Close() error
}

const (
	IsolationNone    = "none"
	IsolationThread  = "thread"
	IsolationProcess = "process"
)

var errIsolationUnavailable = errors.New("isolation primitive unavailable")

// NewIsolation returns the facility selected by kind.
func NewIsolation(kind string, registry *workloads.Registry, launcher Launcher) (Isolation, error) {
	switch kind {
	case "", IsolationNone:
		return NotAvailable{}, nil
	case IsolationThread:
		return &ThreadBased{Registry: registry}, nil
	case IsolationProcess:
		return &ProcessBased{Launcher: launcher}, nil
	}
	return nil, fmt.Errorf("unknown isolation %q (expected none, thread or process)", kind)
}

// NotAvailable is the facility of a runtime without isolated contexts.
type NotAvailable struct{}

func (NotAvailable) Name() string     { return IsolationNone }
func (NotAvailable) Available() error { return errIsolationUnavailable }

// ThreadBased runs each context on a goroutine locked to its own OS thread.
// Requests are resolved by identifier through Registry and the argument is
// decoded from JSON, so nothing but the request crosses the boundary.
type ThreadBased struct {
	Registry *workloads.Registry
}

func (*ThreadBased) Name() string { return IsolationThread }

func (t *ThreadBased) Available() error {
	if t.Registry == nil {
		return errIsolationUnavailable
	}
	return nil
}

func (t *ThreadBased) Create(context.Context) (IsolatedContext, error) {
	c := &threadContext{
		registry: t.Registry,
		requests: make(chan threadCall),
		done:     make(chan struct{}),
	}
	go c.loop()
	return c, nil
}

type threadCall struct {
	req    WorkerRequest
	result chan error
}

type threadContext struct {
	registry *workloads.Registry
	requests chan threadCall
	done     chan struct{}
	closed   bool
}

func (c *threadContext) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case call := <-c.requests:
			call.result <- RunWorker(c.registry, call.req)
		case <-c.done:
			return
		}
	}
}

func (c *threadContext) Run(ctx context.Context, req WorkerRequest) error {
	call := threadCall{req: req, result: make(chan error, 1)}
	select {
	case c.requests <- call:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-call.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *threadContext) Close() error {
	if c.closed {
		return errors.New("context already closed")
	}
	c.closed = true
	close(c.done)
	return nil
}

// ProcessBased backs each context with child processes started by Launcher.
type ProcessBased struct {
	Launcher Launcher
}

func (*ProcessBased) Name() string { return IsolationProcess }

func (p *ProcessBased) Available() error {
	if p.Launcher == nil {
		return errIsolationUnavailable
	}
	return nil
}

func (p *ProcessBased) Create(context.Context) (IsolatedContext, error) {
	return &processContext{launcher: p.Launcher}, nil
}

type processContext struct {
	launcher Launcher
}

func (c *processContext) Run(ctx context.Context, req WorkerRequest) error {
	return c.launcher.Launch(ctx, req)
}

func (c *processContext) Close() error {
	return nil
}
