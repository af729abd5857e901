// Package events fans application events out to external sinks without
// blocking the lifecycle operation that produced them.
package events

import (
	"context"
	"sync"
	"time"

	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
	"jobmarket-workers/internal/models"
)

const DefaultTimeout = 5 * time.Second

// Sink delivers one event to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, event models.ApplicationEvent) error
}

// AsyncPublisher sends every event to every sink on a background goroutine.
// Failures are logged and counted, never returned.
type AsyncPublisher struct {
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncPublisher(sinks []Sink, timeout time.Duration, log logger.Logger) *AsyncPublisher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AsyncPublisher{
		sinks:   sinks,
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "event-publisher"}),
	}
}

// Publish detaches from the caller's context so a finished job does not
// cancel delivery. Events published after Close are dropped.
func (p *AsyncPublisher) Publish(_ context.Context, event models.ApplicationEvent) {
	if len(p.sinks) == 0 {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("publisher closed, dropping event", map[string]interface{}{
			"eventType":     event.Type,
			"applicationId": event.ApplicationID,
		})
		return
	}

	for _, sink := range p.sinks {
		p.wg.Add(1)
		go p.deliver(sink, event)
	}
}

func (p *AsyncPublisher) deliver(sink Sink, event models.ApplicationEvent) {
	defer p.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := sink.Send(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(sink.Name(), "failure").Inc()
		p.logger.Error("event delivery failed", map[string]interface{}{
			"sink":          sink.Name(),
			"eventType":     event.Type,
			"applicationId": event.ApplicationID,
			"error":         err,
		})
		return
	}

	metrics.EventsPublished.WithLabelValues(sink.Name(), "success").Inc()
	p.logger.Debug("event delivered", map[string]interface{}{
		"sink":          sink.Name(),
		"eventType":     event.Type,
		"applicationId": event.ApplicationID,
	})
}

// Wait blocks until in-flight deliveries finish.
func (p *AsyncPublisher) Wait() {
	p.wg.Wait()
}

// Close stops accepting events and waits for in-flight deliveries, giving up
// when ctx is done.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
