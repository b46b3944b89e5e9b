// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENT COMMAND
// Creates the student's personal syllabus from the course catalog: one entry
// per topic, order indices assigned from catalog order, first topic active.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand contains the data to enroll a student in a course.
type EnrollStudentCommand struct {
	// StudentID is the internal ID of the student.
	StudentID string

	// CourseID is the course to enroll in.
	CourseID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EnrollStudentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("enroll_student: student_id is required")
	}
	if c.CourseID == "" {
		return errors.New("enroll_student: course_id is required")
	}
	return nil
}

// EnrollStudentResult contains the result of an enrollment.
type EnrollStudentResult struct {
	// StudentID is the enrolled student.
	StudentID string

	// CourseID is the course enrolled in.
	CourseID string

	// TopicCount is the number of syllabus entries created.
	TopicCount int

	// FirstTopicID is the topic activated at enrollment.
	FirstTopicID string

	// EnrolledAt is when the enrollment happened.
	EnrolledAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentHandler handles the EnrollStudentCommand.
type EnrollStudentHandler struct {
	syllabusRepo   syllabus.Repository
	courseRepo     course.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewEnrollStudentHandler creates a new EnrollStudentHandler.
func NewEnrollStudentHandler(
	syllabusRepo syllabus.Repository,
	courseRepo course.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *EnrollStudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollStudentHandler{
		syllabusRepo:   syllabusRepo,
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Handle executes the enrollment command.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_student: validation failed: %w", err)
	}

	exists, err := h.syllabusRepo.Exists(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll_student: existence check failed: %w", err)
	}
	if exists {
		return nil, shared.ErrSyllabusAlreadyExists
	}

	crs, err := h.courseRepo.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll_student: failed to load course: %w", err)
	}
	if err := crs.Validate(); err != nil {
		return nil, err
	}

	topics := make([]syllabus.TopicState, 0, len(crs.Topics))
	for _, t := range crs.Topics {
		topics = append(topics, syllabus.TopicState{
			TopicID: t.ID,
			Title:   t.Title,
		})
	}

	state, err := syllabus.NewState(syllabus.NewStateParams{
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
		Topics:    topics,
	})
	if err != nil {
		return nil, err
	}

	if err := h.syllabusRepo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("enroll_student: failed to create syllabus: %w", err)
	}

	event := shared.NewStudentEnrolledEvent(cmd.StudentID, cmd.CourseID, len(state.Topics), state.CurrentTopicID)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.eventPublisher != nil {
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("enrollment event publish failed",
				slog.String("student_id", cmd.StudentID),
				slog.Any("error", err))
		}
	}

	h.logger.Info("student enrolled",
		slog.String("student_id", cmd.StudentID),
		slog.String("course_id", cmd.CourseID),
		slog.Int("topics", len(state.Topics)))

	return &EnrollStudentResult{
		StudentID:    cmd.StudentID,
		CourseID:     cmd.CourseID,
		TopicCount:   len(state.Topics),
		FirstTopicID: state.CurrentTopicID,
		EnrolledAt:   state.CreatedAt,
	}, nil
}
