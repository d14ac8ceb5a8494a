// Package notify delivers notifications off the request path. Producers call
// Enqueue, which never blocks; a small worker pool hands each notification
// to a Sender (SMTP, broker or log).
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/model"
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

// ResultRecorder counts delivery outcomes ("sent", "failed", "dropped").
type ResultRecorder interface {
	NotificationResult(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) NotificationResult(string) {}

// Dispatcher queues notifications in a bounded channel and delivers them
// from worker goroutines.
type Dispatcher struct {
	sender   Sender
	log      *slog.Logger
	workers  int
	timeout  time.Duration
	recorder ResultRecorder

	mu     sync.RWMutex
	closed bool
	queue  chan model.Notification
	wg     sync.WaitGroup
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithSendTimeout bounds each Send call.
func WithSendTimeout(d time.Duration) Option {
	return func(p *Dispatcher) { p.timeout = d }
}

// WithResultRecorder sets where delivery outcomes are counted.
func WithResultRecorder(r ResultRecorder) Option {
	return func(p *Dispatcher) { p.recorder = r }
}

// NewDispatcher builds a dispatcher with the given queue size and worker
// count. Call Start before enqueueing and Stop to drain.
func NewDispatcher(sender Sender, log *slog.Logger, buffer, workers int, opts ...Option) *Dispatcher {
	if buffer < 1 {
		buffer = 1
	}
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender:   sender,
		log:      log,
		workers:  workers,
		timeout:  30 * time.Second,
		recorder: noopRecorder{},
		queue:    make(chan model.Notification, buffer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. They run until Stop is called; ctx is the
// parent of every Send context.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(ctx, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n model.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, n); err != nil {
		d.recorder.NotificationResult("failed")
		d.log.Error("notification delivery failed", "to", n.To.Email, "template", n.Template, "err", err)
		return
	}
	d.recorder.NotificationResult("sent")
	d.log.Debug("notification delivered", "to", n.To.Email, "template", n.Template)
}

// Enqueue queues n without blocking. It returns false when the queue is
// full or the dispatcher has been stopped.
func (d *Dispatcher) Enqueue(n model.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.recorder.NotificationResult("dropped")
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.recorder.NotificationResult("dropped")
		return false
	}
}

// Stop refuses new notifications, then waits until the queued ones are
// delivered or ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	Log *slog.Logger
}

// Send logs n.
func (s LogSender) Send(_ context.Context, n model.Notification) error {
	s.Log.Info("notification", "to", n.To.Email, "subject", n.Subject, "template", n.Template, "context", n.Context)
	return nil
}
