// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Record events
	EventRecordSaved   EventType = "record.saved"
	EventRecordDeleted EventType = "record.deleted"

	// Roster events
	EventClassRegistered EventType = "roster.class_registered"

	// Synthesis events
	EventSynthesisStarted   EventType = "synthesis.started"
	EventSynthesisCompleted EventType = "synthesis.completed"
	EventSynthesisFailed    EventType = "synthesis.failed"

	// Narrative events
	EventNarrativeGenerated EventType = "narrative.generated"
	EventNarrativeFailed    EventType = "narrative.failed"
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
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
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

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Record Events
// ═══════════════════════════════════════════════════════════════════════════

// RecordSavedEvent is emitted after a daily record is persisted (insert or overwrite).
type RecordSavedEvent struct {
	BaseEvent
	RecordID    string `json:"record_id"`
	ClassID     string `json:"class_id"`
	RecordDate  string `json:"record_date"`
	Subject     string `json:"subject"`
	StudentRows int    `json:"student_rows"`
	Synthesized bool   `json:"synthesized"`
}

// Payload implements Event interface.
func (e RecordSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"record_id":    e.RecordID,
		"class_id":     e.ClassID,
		"record_date":  e.RecordDate,
		"subject":      e.Subject,
		"student_rows": e.StudentRows,
		"synthesized":  e.Synthesized,
	}
}

// NewRecordSavedEvent creates a new RecordSavedEvent.
func NewRecordSavedEvent(recordID, classID, recordDate, subject string, studentRows int, synthesized bool) RecordSavedEvent {
	return RecordSavedEvent{
		BaseEvent:   NewBaseEvent(EventRecordSaved, recordID),
		RecordID:    recordID,
		ClassID:     classID,
		RecordDate:  recordDate,
		Subject:     subject,
		StudentRows: studentRows,
		Synthesized: synthesized,
	}
}

// RecordDeletedEvent is emitted when an administrator removes a record.
type RecordDeletedEvent struct {
	BaseEvent
	RecordID string `json:"record_id"`
	ClassID  string `json:"class_id"`
}

// Payload implements Event interface.
func (e RecordDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"record_id": e.RecordID,
		"class_id":  e.ClassID,
	}
}

// NewRecordDeletedEvent creates a new RecordDeletedEvent.
func NewRecordDeletedEvent(recordID, classID string) RecordDeletedEvent {
	return RecordDeletedEvent{
		BaseEvent: NewBaseEvent(EventRecordDeleted, recordID),
		RecordID:  recordID,
		ClassID:   classID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Roster Events
// ═══════════════════════════════════════════════════════════════════════════

// ClassRegisteredEvent is emitted when a new class is added to the registry.
type ClassRegisteredEvent struct {
	BaseEvent
	ClassID         string `json:"class_id"`
	ClassName       string `json:"class_name"`
	HomeroomTeacher string `json:"homeroom_teacher"`
	StudentCount    int    `json:"student_count"`
}

// Payload implements Event interface.
func (e ClassRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"class_id":         e.ClassID,
		"class_name":       e.ClassName,
		"homeroom_teacher": e.HomeroomTeacher,
		"student_count":    e.StudentCount,
	}
}

// NewClassRegisteredEvent creates a new ClassRegisteredEvent.
func NewClassRegisteredEvent(classID, className, homeroomTeacher string, studentCount int) ClassRegisteredEvent {
	return ClassRegisteredEvent{
		BaseEvent:       NewBaseEvent(EventClassRegistered, classID),
		ClassID:         classID,
		ClassName:       className,
		HomeroomTeacher: homeroomTeacher,
		StudentCount:    studentCount,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Synthesis Events
// ═══════════════════════════════════════════════════════════════════════════

// SynthesisCompletedEvent is emitted when a bulk generation run finishes.
type SynthesisCompletedEvent struct {
	BaseEvent
	RunID        string `json:"run_id"`
	RecordsSaved int    `json:"records_saved"`
	ClassCount   int    `json:"class_count"`
	DocsPerClass int    `json:"docs_per_class"`
}

// Payload implements Event interface.
func (e SynthesisCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":         e.RunID,
		"records_saved":  e.RecordsSaved,
		"class_count":    e.ClassCount,
		"docs_per_class": e.DocsPerClass,
	}
}

// NewSynthesisCompletedEvent creates a new SynthesisCompletedEvent.
func NewSynthesisCompletedEvent(runID string, recordsSaved, classCount, docsPerClass int) SynthesisCompletedEvent {
	return SynthesisCompletedEvent{
		BaseEvent:    NewBaseEvent(EventSynthesisCompleted, runID),
		RunID:        runID,
		RecordsSaved: recordsSaved,
		ClassCount:   classCount,
		DocsPerClass: docsPerClass,
	}
}

// SynthesisFailedEvent is emitted when a bulk run aborts on a storage error.
// SavedCount reports how many records were durably persisted before the abort;
// partial batches stay visible on the next load and must not be hidden.
type SynthesisFailedEvent struct {
	BaseEvent
	RunID      string `json:"run_id"`
	SavedCount int    `json:"saved_count"`
	TotalCount int    `json:"total_count"`
	Reason     string `json:"reason"`
}

// Payload implements Event interface.
func (e SynthesisFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":      e.RunID,
		"saved_count": e.SavedCount,
		"total_count": e.TotalCount,
		"reason":      e.Reason,
	}
}

// NewSynthesisFailedEvent creates a new SynthesisFailedEvent.
func NewSynthesisFailedEvent(runID string, savedCount, totalCount int, reason string) SynthesisFailedEvent {
	return SynthesisFailedEvent{
		BaseEvent:  NewBaseEvent(EventSynthesisFailed, runID),
		RunID:      runID,
		SavedCount: savedCount,
		TotalCount: totalCount,
		Reason:     reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Narrative Events
// ═══════════════════════════════════════════════════════════════════════════

// NarrativeGeneratedEvent is emitted when the external text service returns a summary.
type NarrativeGeneratedEvent struct {
	BaseEvent
	RecordID string `json:"record_id"`
	Mode     string `json:"mode"` // Harian, Mingguan, Bulanan
	Length   int    `json:"length"`
}

// Payload implements Event interface.
func (e NarrativeGeneratedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"record_id": e.RecordID,
		"mode":      e.Mode,
		"length":    e.Length,
	}
}

// NewNarrativeGeneratedEvent creates a new NarrativeGeneratedEvent.
func NewNarrativeGeneratedEvent(recordID, mode string, length int) NarrativeGeneratedEvent {
	return NarrativeGeneratedEvent{
		BaseEvent: NewBaseEvent(EventNarrativeGenerated, recordID),
		RecordID:  recordID,
		Mode:      mode,
		Length:    length,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

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
