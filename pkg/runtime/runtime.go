// Package runtime executes registry work one job at a time.
//
// Every dispatcher invocation goes through a single mailbox goroutine, so
// the store itself never needs a lock. A job that has started always runs
// to completion; a caller's context can only abandon a job still waiting
// in the mailbox.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrStopped  = errors.New("runtime: stopped")
	ErrPanicked = errors.New("runtime: job panicked")
)

const (
	pending int32 = iota
	running
	abandoned
)

type job struct {
	fn       func()
	state    atomic.Int32
	finished chan struct{}
	panicked bool
}

// Runtime is a run-to-completion mailbox.
type Runtime struct {
	log  *zap.Logger
	jobs chan *job

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	exited    chan struct{}
}

// New returns a runtime whose mailbox holds up to buffer waiting jobs.
func New(buffer int, log *zap.Logger) *Runtime {
	if buffer < 0 {
		buffer = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runtime{
		log:    log,
		jobs:   make(chan *job, buffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start launches the mailbox goroutine. Calling it twice is a no-op.
func (rt *Runtime) Start() {
	rt.startOnce.Do(func() { go rt.loop() })
}

// Stop ends the mailbox after the running job (if any) finishes.
// Jobs still waiting fail with ErrStopped.
func (rt *Runtime) Stop() {
	rt.stopOnce.Do(func() { close(rt.done) })
	rt.startOnce.Do(func() { close(rt.exited) })
	<-rt.exited
}

func (rt *Runtime) loop() {
	defer close(rt.exited)
	for {
		select {
		case <-rt.done:
			return
		case j := <-rt.jobs:
			rt.run(j)
		}
	}
}

func (rt *Runtime) run(j *job) {
	if !j.state.CompareAndSwap(pending, running) {
		return
	}
	defer close(j.finished)
	defer func() {
		if p := recover(); p != nil {
			j.panicked = true
			rt.log.Error("runtime job panicked", zap.String("panic", fmt.Sprint(p)))
		}
	}()
	j.fn()
}

// Do runs fn on the mailbox goroutine and waits for it.
func (rt *Runtime) Do(ctx context.Context, fn func()) error {
	j := &job{fn: fn, finished: make(chan struct{})}

	select {
	case <-rt.done:
		return ErrStopped
	default:
	}

	select {
	case rt.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-rt.done:
		return ErrStopped
	}

	select {
	case <-j.finished:
	case <-ctx.Done():
		if j.state.CompareAndSwap(pending, abandoned) {
			return ctx.Err()
		}
		<-j.finished
	case <-rt.done:
		if j.state.CompareAndSwap(pending, abandoned) {
			return ErrStopped
		}
		<-j.finished
	}
	if j.panicked {
		return ErrPanicked
	}
	return nil
}
