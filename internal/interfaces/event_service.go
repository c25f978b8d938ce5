package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventPipelineStage fires on every response pipeline state change
	EventPipelineStage EventType = "pipeline_stage"
	// EventMessageCreated fires after a conversation turn is persisted
	EventMessageCreated EventType = "message_created"
	// EventProjectDeleted fires after a project cascade delete completes
	EventProjectDeleted EventType = "project_deleted"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Unsubscribe from an event type
	Unsubscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
