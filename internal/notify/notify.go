// Package notify delivers workflow events to people: by e-mail and over Redis pub/sub
// for live inbox refresh. Delivery never blocks or fails a transition.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"medidocs/internal/service"
)

const deliveryTimeout = 15 * time.Second

// Multi fans an event out to several notifiers
type Multi []service.Notifier

// Notify forwards the event to every notifier
func (m Multi) Notify(ctx context.Context, event service.Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

// async runs deliveries in the background, detached from the request context
type async struct {
	name    string
	deliver func(ctx context.Context, event service.Event) error
	wg      sync.WaitGroup
}

func (a *async) Notify(ctx context.Context, event service.Event) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := a.deliver(dctx, event); err != nil {
			slog.Error("Failed to deliver notification",
				"notifier", a.name,
				"document_id", event.DocumentID,
				"action", event.Action,
				"error", err,
			)
		}
	}()
}

// Wait blocks until in-flight deliveries have finished
func (a *async) Wait() {
	a.wg.Wait()
}
