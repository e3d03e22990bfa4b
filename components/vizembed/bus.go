package vizembed

import (
	"context"
	"sync"
)

// TopicSelection is the fixed bus channel for visualization selection events.
const TopicSelection = "selection"

// Handler consumes events delivered on a bus topic.
type Handler func(ctx context.Context, event SelectionEvent)

// Subscription is owned by the component that created it. Cancel is
// idempotent; after it returns the bus holds no reference to the handler.
type Subscription interface {
	Cancel()
}

// BusOption customizes bus construction.
type BusOption func(*Bus)

// WithBusTelemetry wires a telemetry sink for delivery failures.
func WithBusTelemetry(t Telemetry) BusOption {
	return func(b *Bus) {
		b.telemetry = normalizeTelemetry(t)
	}
}

// Bus is an in-process publish/subscribe channel. Delivery is synchronous on
// the publisher's goroutine, in subscription order. A handler panic is
// recovered and recorded; it never propagates to the publisher or to sibling
// handlers. Publishing with zero subscribers is a no-op.
type Bus struct {
	mu        sync.RWMutex
	topics    map[string][]*busSubscription
	next      int
	telemetry Telemetry
}

// NewBus builds an empty bus. Intended lifetime is one host page session;
// construct it once and inject it into producers and consumers.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		topics:    make(map[string][]*busSubscription),
		telemetry: noopTelemetry{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler on a topic and returns its subscription.
func (b *Bus) Subscribe(topic string, handler Handler) Subscription {
	if handler == nil {
		return canceledSubscription{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &busSubscription{bus: b, topic: topic, id: b.next, handler: handler}
	b.next++
	b.topics[topic] = append(b.topics[topic], sub)
	return sub
}

// Publish delivers the event to every currently-subscribed handler.
// Fire-and-forget: handler failures are recorded, never returned.
func (b *Bus) Publish(ctx context.Context, topic string, event SelectionEvent) {
	b.mu.RLock()
	subs := make([]*busSubscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()
	for _, sub := range subs {
		if sub.isCanceled() {
			continue
		}
		b.deliver(ctx, topic, sub, event)
	}
}

// SubscriberCount reports active subscriptions on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Bus) deliver(ctx context.Context, topic string, sub *busSubscription, event SelectionEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.telemetry.Record(ctx, "vizembed.bus.handler_panic", map[string]any{
				"topic": topic,
				"panic": r,
			})
		}
	}()
	sub.handler(ctx, event)
}

func (b *Bus) remove(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

type busSubscription struct {
	bus     *Bus
	topic   string
	id      int
	handler Handler

	mu       sync.Mutex
	canceled bool
}

func (s *busSubscription) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.mu.Unlock()
	s.bus.remove(s.topic, s.id)
}

func (s *busSubscription) isCanceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

type canceledSubscription struct{}

func (canceledSubscription) Cancel() {}
