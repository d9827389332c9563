package brixauth

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples audit delivery from request latency. Emit
// stamps each event with the client metadata carried on the request
// context, then hands it to a single worker goroutine feeding the sink.
// Context values must be read on the request goroutine, before the event
// crosses to the worker, which is why the stamping lives here rather than
// in the sink.
type auditDispatcher struct {
	sink     AuditSink
	events   chan AuditEvent
	quit     chan struct{}
	drained  chan struct{}
	dropFull bool

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}

	d := &auditDispatcher{
		sink:     sink,
		events:   make(chan AuditEvent, buffer),
		quit:     make(chan struct{}),
		drained:  make(chan struct{}),
		dropFull: cfg.DropIfFull,
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.drained)

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flush()
			return
		}
	}
}

// flush hands any buffered events to the sink after the quit signal. New
// emits are already refused at this point, so the loop terminates.
func (d *auditDispatcher) flush() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enriches event with the client IP and user agent attached to ctx
// via [WithClientIP] and [WithUserAgent], then queues it for delivery.
// With DropIfFull set a full buffer counts the event as dropped instead of
// blocking; otherwise Emit waits until the buffer accepts the event, ctx
// is cancelled, or the dispatcher shuts down. Safe to call on a nil or
// closed dispatcher.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = userAgentFromContext(ctx)
	}

	if d.dropFull {
		select {
		case d.events <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops the worker after draining buffered events into the sink.
// Idempotent; Emit calls racing Close are silently discarded.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		<-d.drained
	})
}

// Dropped reports how many events were discarded because the buffer was
// full under the DropIfFull policy.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
