package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher. Delivery is asynchronous.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers ev to every subscriber of its concrete type.
// Usage: bus.Publish(SessionStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case SessionStartedEvent:
		event.Publish(b.dispatcher, e)
	case SessionProgressEvent:
		event.Publish(b.dispatcher, e)
	case SessionFinishedEvent:
		event.Publish(b.dispatcher, e)
	case CommandBuiltEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers handler for the event type named by its parameter and
// returns an unsubscribe function. Unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e SessionFinishedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(SessionStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionProgressEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionFinishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CommandBuiltEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
