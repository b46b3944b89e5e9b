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
	// Enrollment events
	EventStudentEnrolled   EventType = "student.enrolled"
	EventStudentUnenrolled EventType = "student.unenrolled"

	// Syllabus events
	EventTopicCompleted   EventType = "syllabus.topic_completed"
	EventTopicActivated   EventType = "syllabus.topic_activated"
	EventSyllabusRepaired EventType = "syllabus.repaired"
	EventCourseCompleted  EventType = "syllabus.course_completed"

	// Chat events
	EventTurnCompleted EventType = "chat.turn_completed"

	// Summary events
	EventSummaryRequested EventType = "summary.requested"
	EventSummarySaved     EventType = "summary.saved"
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
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentEnrolledEvent is emitted when a student enrolls in a course and
// their personal syllabus is created.
type StudentEnrolledEvent struct {
	BaseEvent
	StudentID  string `json:"student_id"`
	CourseID   string `json:"course_id"`
	TopicCount int    `json:"topic_count"`
	FirstTopic string `json:"first_topic"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":  e.StudentID,
		"course_id":   e.CourseID,
		"topic_count": e.TopicCount,
		"first_topic": e.FirstTopic,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, courseID string, topicCount int, firstTopic string) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent:  NewBaseEvent(EventStudentEnrolled, studentID),
		StudentID:  studentID,
		CourseID:   courseID,
		TopicCount: topicCount,
		FirstTopic: firstTopic,
	}
}

// StudentUnenrolledEvent is emitted when a student drops a course and their
// syllabus is removed.
type StudentUnenrolledEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

// Payload implements Event interface.
func (e StudentUnenrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
	}
}

// NewStudentUnenrolledEvent creates a new StudentUnenrolledEvent.
func NewStudentUnenrolledEvent(studentID, courseID string) StudentUnenrolledEvent {
	return StudentUnenrolledEvent{
		BaseEvent: NewBaseEvent(EventStudentUnenrolled, studentID),
		StudentID: studentID,
		CourseID:  courseID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Syllabus Events
// ═══════════════════════════════════════════════════════════════════════════

// TopicCompletedEvent is emitted when the reconciler marks a topic completed.
type TopicCompletedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	TopicID   string `json:"topic_id"`
}

// Payload implements Event interface.
func (e TopicCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"topic_id":   e.TopicID,
	}
}

// NewTopicCompletedEvent creates a new TopicCompletedEvent.
func NewTopicCompletedEvent(studentID, courseID, topicID string) TopicCompletedEvent {
	return TopicCompletedEvent{
		BaseEvent: NewBaseEvent(EventTopicCompleted, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		TopicID:   topicID,
	}
}

// TopicActivatedEvent is emitted when a topic moves into progress, whether
// the model requested it or the repair check activated the successor.
type TopicActivatedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	TopicID   string `json:"topic_id"`
}

// Payload implements Event interface.
func (e TopicActivatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"topic_id":   e.TopicID,
	}
}

// NewTopicActivatedEvent creates a new TopicActivatedEvent.
func NewTopicActivatedEvent(studentID, courseID, topicID string) TopicActivatedEvent {
	return TopicActivatedEvent{
		BaseEvent: NewBaseEvent(EventTopicActivated, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		TopicID:   topicID,
	}
}

// SyllabusRepairedEvent is emitted when reconciliation had to activate the
// next pending topic because the incoming update left no topic in progress.
type SyllabusRepairedEvent struct {
	BaseEvent
	StudentID      string `json:"student_id"`
	CourseID       string `json:"course_id"`
	ActivatedTopic string `json:"activated_topic"`
	OrderIndex     int    `json:"order_index"`
}

// Payload implements Event interface.
func (e SyllabusRepairedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":      e.StudentID,
		"course_id":       e.CourseID,
		"activated_topic": e.ActivatedTopic,
		"order_index":     e.OrderIndex,
	}
}

// NewSyllabusRepairedEvent creates a new SyllabusRepairedEvent.
func NewSyllabusRepairedEvent(studentID, courseID, activatedTopic string, orderIndex int) SyllabusRepairedEvent {
	return SyllabusRepairedEvent{
		BaseEvent:      NewBaseEvent(EventSyllabusRepaired, studentID),
		StudentID:      studentID,
		CourseID:       courseID,
		ActivatedTopic: activatedTopic,
		OrderIndex:     orderIndex,
	}
}

// CourseCompletedEvent is emitted when the last topic of a course is completed
// and no pending successor remains to activate.
type CourseCompletedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	LastTopic string `json:"last_topic"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"last_topic": e.LastTopic,
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(studentID, courseID, lastTopic string) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent: NewBaseEvent(EventCourseCompleted, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		LastTopic: lastTopic,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Chat Events
// ═══════════════════════════════════════════════════════════════════════════

// TurnCompletedEvent is emitted after a tutoring turn produced a real model
// response and the transcript was updated. Degraded turns do not emit it.
type TurnCompletedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	TopicID   string `json:"topic_id"`
}

// Payload implements Event interface.
func (e TurnCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"topic_id":   e.TopicID,
	}
}

// NewTurnCompletedEvent creates a new TurnCompletedEvent.
func NewTurnCompletedEvent(studentID, courseID, topicID string) TurnCompletedEvent {
	return TurnCompletedEvent{
		BaseEvent: NewBaseEvent(EventTurnCompleted, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		TopicID:   topicID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Summary Events
// ═══════════════════════════════════════════════════════════════════════════

// SummaryRequestedEvent is emitted when a tutoring turn decides a topic
// transcript is ready to be condensed into a pedagogical summary. Handlers
// run asynchronously; the requesting turn never waits for them.
type SummaryRequestedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	TopicID   string `json:"topic_id"`
}

// Payload implements Event interface.
func (e SummaryRequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"topic_id":   e.TopicID,
	}
}

// NewSummaryRequestedEvent creates a new SummaryRequestedEvent.
func NewSummaryRequestedEvent(studentID, courseID, topicID string) SummaryRequestedEvent {
	return SummaryRequestedEvent{
		BaseEvent: NewBaseEvent(EventSummaryRequested, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		TopicID:   topicID,
	}
}

// SummarySavedEvent is emitted after a topic summary is persisted.
type SummarySavedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	TopicID   string `json:"topic_id"`
	SummaryID string `json:"summary_id"`
}

// Payload implements Event interface.
func (e SummarySavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"topic_id":   e.TopicID,
		"summary_id": e.SummaryID,
	}
}

// NewSummarySavedEvent creates a new SummarySavedEvent.
func NewSummarySavedEvent(studentID, topicID, summaryID string) SummarySavedEvent {
	return SummarySavedEvent{
		BaseEvent: NewBaseEvent(EventSummarySaved, studentID),
		StudentID: studentID,
		TopicID:   topicID,
		SummaryID: summaryID,
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
