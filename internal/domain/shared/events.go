// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - each event represents something significant that
// happened while recomputing a user's achievement state.
const (
	// Progress events
	EventProgressRefreshed    EventType = "progress.refreshed"
	EventAchievementCompleted EventType = "progress.achievement_completed"

	// Recommendation events
	EventRecommendationsBuilt EventType = "recommendation.built"

	// System events
	EventRefreshRunCompleted EventType = "system.refresh_run_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementCompletedEvent is emitted when a user's progress for an
// achievement crosses 100% during a refresh.
type AchievementCompletedEvent struct {
	BaseEvent
	EventID       string `json:"event_id"`
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
	Points        int    `json:"points"`
}

// Payload implements Event interface.
func (e AchievementCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"event_id":       e.EventID,
		"user_id":        e.UserID,
		"achievement_id": e.AchievementID,
		"points":         e.Points,
	}
}

// NewAchievementCompletedEvent creates a new AchievementCompletedEvent.
func NewAchievementCompletedEvent(eventID, userID, achievementID string, points int) AchievementCompletedEvent {
	return AchievementCompletedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementCompleted, userID),
		EventID:       eventID,
		UserID:        userID,
		AchievementID: achievementID,
		Points:        points,
	}
}

// ProgressRefreshedEvent is emitted after a full progress recomputation for a user.
type ProgressRefreshedEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	Achievements int    `json:"achievements"`
	Failed       int    `json:"failed"`
}

// Payload implements Event interface.
func (e ProgressRefreshedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"achievements": e.Achievements,
		"failed":       e.Failed,
	}
}

// NewProgressRefreshedEvent creates a new ProgressRefreshedEvent.
func NewProgressRefreshedEvent(userID string, achievements, failed int) ProgressRefreshedEvent {
	return ProgressRefreshedEvent{
		BaseEvent:    NewBaseEvent(EventProgressRefreshed, userID),
		UserID:       userID,
		Achievements: achievements,
		Failed:       failed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
