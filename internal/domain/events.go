package domain

import "time"

const (
	EventTypeMovementRecorded = "movement.recorded"

	AggregateTypeMovement = "movement"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
