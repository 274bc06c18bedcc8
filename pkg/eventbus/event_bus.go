// Package eventbus carries editor notifications (history changes, applied commands, saves and
// session lifecycle) to other services.
package eventbus

import (
	"context"

	"github.com/dukex/operion-editor/pkg/events"
)

// Event is a notification published by an editor session.
type Event interface {
	GetType() events.EventType
}

// EventHandler receives a decoded event. Returning an error nacks the message.
type EventHandler func(ctx context.Context, event Event) error

// EventBus publishes session notifications keyed by workflow ID and dispatches
// received ones to a handler per event type.
type EventBus interface {
	// Publish sends event with key as the partition key.
	Publish(ctx context.Context, key string, event Event) error
	// Handle registers the handler for eventType, replacing any previous one.
	Handle(eventType events.EventType, handler EventHandler) error
	// Subscribe starts dispatching received events until ctx is done.
	Subscribe(ctx context.Context) error
	Close() error
	GenerateID() string
}
