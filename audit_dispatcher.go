package goSession

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const auditSinkTimeout = 5 * time.Second

// auditDispatcher moves events off the lifecycle path onto one goroutine.
// Events queued before Close are delivered before Close returns.
type auditDispatcher struct {
	dropIfFull bool
	sink       AuditSink
	ch         chan AuditEvent
	done       chan struct{}
	wg         sync.WaitGroup
	dropped    atomic.Uint64
	delivered  atomic.Uint64
	closed     atomic.Bool
	closeOnce  sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		dropIfFull: cfg.DropIfFull,
		sink:       sink,
		ch:         make(chan AuditEvent, cfg.BufferSize),
		done:       make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), auditSinkTimeout)
	defer cancel()
	d.sink.Emit(ctx, event)
	d.delivered.Add(1)
}

// Emit queues event. With DropIfFull a full buffer drops the event and
// counts it; otherwise Emit waits for room or for ctx.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.done:
	}
}

// Close stops accepting events and drains the queue.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the number of events lost to backpressure.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered returns the number of events handed to the sink.
func (d *auditDispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
