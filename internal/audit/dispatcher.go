package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the buffer is full instead of blocking
	// the emitting operation.
	DropIfFull bool

	// OnDrop, when set, is called synchronously for every discarded event.
	OnDrop func(Event)
	// OnSinkPanic, when set, receives the recovered value of a panicking sink.
	OnSinkPanic func(Event, any)
}

// Dispatcher forwards events to a sink from a single goroutine, so the sink
// sees them in emission order. Every method is safe on a nil Dispatcher.
type Dispatcher struct {
	cfg  Config
	sink Sink
	ch   chan Event
	wg   sync.WaitGroup

	// mu guards closed and the close of ch; senders hold it shared.
	mu     sync.RWMutex
	closed bool
	// stop unblocks senders waiting on a full buffer during Close.
	stop     chan struct{}
	stopOnce sync.Once

	delivered atomic.Uint64
	dropped   atomic.Uint64
	panics    atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when auditing is
// disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, max(cfg.BufferSize, 1)),
		stop: make(chan struct{}),
	}
	d.wg.Go(d.run)
	return d
}

func (d *Dispatcher) run() {
	for event := range d.ch {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			if d.cfg.OnSinkPanic != nil {
				d.cfg.OnSinkPanic(event, r)
			}
		}
	}()
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

// Emit queues event. With DropIfFull a full buffer discards it; otherwise
// Emit waits for room until ctx is done or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		default:
			d.drop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.drop(event)
	case <-d.stop:
		d.drop(event)
	}
}

func (d *Dispatcher) drop(event Event) {
	d.dropped.Add(1)
	if d.cfg.OnDrop != nil {
		d.cfg.OnDrop(event)
	}
}

// Close stops accepting events and waits until every queued event has been
// handed to the sink. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	// Blocked senders hold the read lock; release them first.
	d.stopOnce.Do(func() { close(d.stop) })

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Dropped reports how many events were discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered reports how many events the sink accepted without panicking.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

// SinkPanics reports how many deliveries panicked.
func (d *Dispatcher) SinkPanics() uint64 {
	if d == nil {
		return 0
	}
	return d.panics.Load()
}
