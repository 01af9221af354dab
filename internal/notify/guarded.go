package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parking-system/internal/services"
)

// Sink is a remote display or barrier feed that can fail.
type Sink interface {
	Name() string
	PublishCapacity(ctx context.Context, freeSlots int) error
	PublishBarrier(ctx context.Context, which services.Barrier) error
}

// Guarded adapts a Sink to services.Notifier. Failures are logged and
// swallowed, and a breaker keeps a dead sink from slowing every operation.
type Guarded struct {
	sink    Sink
	breaker *Breaker
	timeout time.Duration
	logger  *slog.Logger
}

func NewGuarded(sink Sink, breaker *Breaker, timeout time.Duration, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{
		sink:    sink,
		breaker: breaker,
		timeout: timeout,
		logger:  logger,
	}
}

func (g *Guarded) OnCapacityChanged(freeSlots int) {
	g.run("capacity_changed", func(ctx context.Context) error {
		return g.sink.PublishCapacity(ctx, freeSlots)
	})
}

func (g *Guarded) OnBarrierOpen(which services.Barrier) {
	g.run("barrier_open", func(ctx context.Context) error {
		return g.sink.PublishBarrier(ctx, which)
	})
}

func (g *Guarded) run(event string, publish func(ctx context.Context) error) {
	err := g.breaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()
		return publish(ctx)
	})
	if err == nil {
		return
	}

	if errors.Is(err, ErrBreakerOpen) {
		g.logger.Debug("Notification skipped", "sink", g.sink.Name(), "event", event)
		return
	}
	g.logger.Error("Notification failed", "sink", g.sink.Name(), "event", event, "error", err)
}
