package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/metrics"
)

var (
	ErrQueueFull = errors.New("notify: queue full")
	ErrClosed    = errors.New("notify: dispatcher closed")
)

const (
	DefaultQueueSize = 100
	sinkTimeout      = 10 * time.Second
)

type Dispatcher struct {
	sinks []Sink
	queue chan Event
	log   *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(log *slog.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		sinks: sinks,
		queue: make(chan Event, size),
		log:   log.With("component", "notify"),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			err := s.Handle(ctx, ev)
			cancel()

			if err != nil {
				metrics.NotificationSinkErrors.WithLabelValues(s.Name()).Inc()
				d.log.Warn("notification sink failed",
					"sink", s.Name(),
					"type", ev.Type,
					"error", err,
				)
			}
		}
	}
}

// Emit never blocks: a full queue drops the event.
func (d *Dispatcher) Emit(_ context.Context, ev Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- ev:
		return nil
	default:
		metrics.NotificationsDropped.Inc()
		d.log.Warn("notification queue full, dropping event", "type", ev.Type)
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until queued ones are handled or
// ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Emitter = (*Dispatcher)(nil)
