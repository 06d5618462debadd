// Package events fans committed registry mutations out to an external feed.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/joeydtaylor/steeze-dns/pkg/codec"
	"github.com/joeydtaylor/steeze-dns/pkg/dispatch"
	"go.uber.org/zap"
)

// Event is the wire form of a committed change.
type Event struct {
	Topic  string          `json:"topic"`
	At     time.Time       `json:"at"`
	Change dispatch.Change `json:"change"`
}

func (e Event) Encode() ([]byte, error) { return codec.JSONStrict.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards events. Used when no relay target is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Async decouples publishing from the registry mailbox. Offer never blocks;
// when the queue is full the event is dropped and counted.
type Async struct {
	pub     Publisher
	log     *zap.Logger
	queue   chan Event
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	dropped int
	closed  bool
	onDrop  func()
	wg      sync.WaitGroup
	closing sync.Once
}

func NewAsync(pub Publisher, buffer int, log *zap.Logger) *Async {
	if buffer <= 0 {
		buffer = 1024
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Async{
		pub:     pub,
		log:     log,
		queue:   make(chan Event, buffer),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// OnDrop registers fn to be called for every dropped event. Set it
// before the first Offer.
func (a *Async) OnDrop(fn func()) { a.onDrop = fn }

// Offer queues c for publishing. Safe to call from a dispatch hook, and
// after Close, when the event is dropped.
func (a *Async) Offer(c dispatch.Change) {
	a.mu.Lock()
	queued := false
	if !a.closed {
		select {
		case a.queue <- Event{At: a.now().UTC(), Change: c}:
			queued = true
		default:
		}
	}
	if !queued {
		a.dropped++
	}
	a.mu.Unlock()

	if queued {
		return
	}
	if a.onDrop != nil {
		a.onDrop()
	}
	a.log.Warn("event dropped", zap.String("op", c.Op), zap.Uint32("id", c.Record.ID))
}

func (a *Async) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Run drains the queue until Close.
func (a *Async) Run() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for ev := range a.queue {
			ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
			if err := a.pub.Publish(ctx, ev); err != nil {
				a.log.Error("event publish failed",
					zap.String("op", ev.Change.Op),
					zap.Uint32("id", ev.Change.Record.ID),
					zap.Error(err),
				)
			}
			cancel()
		}
	}()
}

// Close stops accepting events and waits for queued ones to be published.
func (a *Async) Close() {
	a.closing.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
	})
	a.wg.Wait()
}
