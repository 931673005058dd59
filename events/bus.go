package events

import (
	"context"
	"errors"
	"sync"

	"github.com/michaelfranz/springai-actions-go/telemetry"
)

type (
	// Bus publishes invocation events to registered subscribers in a fan-out
	// pattern. The bus is thread-safe and supports concurrent Publish,
	// Register, and Close operations.
	//
	// Unlike a typical hook bus, Publish never aborts mid-fan-out: a
	// misbehaving telemetry sink must not prevent the rest of the system
	// from observing an event. Every subscriber error is logged and
	// execution continues to the next subscriber.
	Bus interface {
		// Publish delivers event to every currently registered subscriber,
		// in no particular order between subscribers, logging (never
		// returning) subscriber errors.
		Publish(ctx context.Context, event InvocationEvent)
		// Register adds a subscriber and returns a Subscription that can be
		// closed to unregister it. Register returns an error if sub is nil.
		Register(sub Subscriber) (Subscription, error)
	}

	// Subscriber reacts to published invocation events.
	Subscriber interface {
		HandleEvent(ctx context.Context, event InvocationEvent) error
	}

	// SubscriberFunc adapts a plain function to a Subscriber.
	SubscriberFunc func(ctx context.Context, event InvocationEvent) error

	// Subscription represents an active registration on a Bus. Close is
	// idempotent and thread-safe.
	Subscription interface {
		Close() error
	}

	bus struct {
		mu          sync.RWMutex
		subscribers map[*subscription]Subscriber
		logger      telemetry.Logger
	}

	subscription struct {
		bus  *bus
		once sync.Once
	}
)

// HandleEvent calls f.
func (f SubscriberFunc) HandleEvent(ctx context.Context, event InvocationEvent) error {
	return f(ctx, event)
}

// NewBus constructs an in-memory event bus. logger receives one Error call
// per subscriber failure; pass telemetry.NewNoopLogger() to discard them.
func NewBus(logger telemetry.Logger) Bus {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	return &bus{subscribers: make(map[*subscription]Subscriber), logger: logger}
}

// Publish delivers event to every currently registered subscriber. The
// snapshot of subscribers is captured before iteration begins, so
// registrations/unregistrations during Publish do not affect the current
// delivery. A subscriber error is logged and does not stop delivery to the
// remaining subscribers.
func (b *bus) Publish(ctx context.Context, event InvocationEvent) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.HandleEvent(ctx, event); err != nil {
			b.logger.Error(ctx, "events: subscriber failed", "error", err, "eventType", event.Type, "invocationId", event.InvocationID)
		}
	}
}

// Register adds a subscriber to the bus and returns a Subscription handle
// that can be closed to unregister it.
func (b *bus) Register(sub Subscriber) (Subscription, error) {
	if sub == nil {
		return nil, errors.New("events: subscriber is required")
	}
	s := &subscription{bus: b}
	b.mu.Lock()
	b.subscribers[s] = sub
	b.mu.Unlock()
	return s, nil
}

// Close removes the subscriber from the bus. It is idempotent: subsequent
// calls are no-ops.
func (s *subscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subscribers, s)
		s.bus.mu.Unlock()
	})
	return nil
}
