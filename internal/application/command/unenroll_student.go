package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNENROLL STUDENT COMMAND
// Drops the student's syllabus for a course. Chat history and summaries go
// with it through the schema's cascade rules.
// ══════════════════════════════════════════════════════════════════════════════

// UnenrollStudentCommand contains the data to drop a course.
type UnenrollStudentCommand struct {
	StudentID     string
	CourseID      string
	CorrelationID string
}

// Validate validates the command.
func (c UnenrollStudentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("unenroll_student: student_id is required")
	}
	if c.CourseID == "" {
		return errors.New("unenroll_student: course_id is required")
	}
	return nil
}

// UnenrollStudentHandler handles the UnenrollStudentCommand.
type UnenrollStudentHandler struct {
	syllabusRepo   syllabus.Repository
	syllabusCache  syllabus.Cache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewUnenrollStudentHandler creates a new UnenrollStudentHandler.
// cache may be nil.
func NewUnenrollStudentHandler(
	syllabusRepo syllabus.Repository,
	syllabusCache syllabus.Cache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *UnenrollStudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnenrollStudentHandler{
		syllabusRepo:   syllabusRepo,
		syllabusCache:  syllabusCache,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Handle executes the unenrollment command.
func (h *UnenrollStudentHandler) Handle(ctx context.Context, cmd UnenrollStudentCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("unenroll_student: validation failed: %w", err)
	}

	if err := h.syllabusRepo.DeleteForStudent(ctx, cmd.StudentID, cmd.CourseID); err != nil {
		return fmt.Errorf("unenroll_student: failed to delete syllabus: %w", err)
	}

	if h.syllabusCache != nil {
		if err := h.syllabusCache.Invalidate(ctx, cmd.StudentID, cmd.CourseID); err != nil {
			h.logger.Warn("syllabus cache invalidation failed",
				slog.String("student_id", cmd.StudentID),
				slog.Any("error", err))
		}
	}

	if h.eventPublisher != nil {
		event := shared.NewStudentUnenrolledEvent(cmd.StudentID, cmd.CourseID)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		if err := h.eventPublisher.Publish(event); err != nil {
			h.logger.Warn("unenrollment event publish failed",
				slog.String("student_id", cmd.StudentID),
				slog.Any("error", err))
		}
	}

	h.logger.Info("student unenrolled",
		slog.String("student_id", cmd.StudentID),
		slog.String("course_id", cmd.CourseID))
	return nil
}
