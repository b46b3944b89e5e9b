// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Vista de lectura del temario: estado de cada tema y porcentaje completado.
// Alimenta las barras de progreso del listado de cursos.
// ══════════════════════════════════════════════════════════════════════════════

// GetProgressQuery contiene los parámetros de la consulta de progreso.
type GetProgressQuery struct {
	// StudentID - ID interno del estudiante.
	StudentID string

	// CourseID - curso del que se quiere el progreso.
	CourseID string
}

// Validate comprueba los parámetros.
func (q *GetProgressQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_progress: student_id is required")
	}
	if q.CourseID == "" {
		return errors.New("get_progress: course_id is required")
	}
	return nil
}

// TopicProgressDTO - estado de un tema para la vista.
type TopicProgressDTO struct {
	TopicID    string `json:"topic_id"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status"`
	OrderIndex int    `json:"order_index"`
}

// ProgressDTO - vista completa del progreso en un curso.
type ProgressDTO struct {
	StudentID         string             `json:"student_id"`
	CourseID          string             `json:"course_id"`
	CurrentTopicID    string             `json:"current_topic_id"`
	Topics            []TopicProgressDTO `json:"topics"`
	CompletedTopics   int                `json:"completed_topics"`
	TotalTopics       int                `json:"total_topics"`
	CompletionPercent int                `json:"completion_percent"`
	CourseCompleted   bool               `json:"course_completed"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

const progressCacheTTL = 2 * time.Minute

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	syllabusRepo  syllabus.Repository
	syllabusCache syllabus.Cache
	logger        *slog.Logger
}

// NewGetProgressHandler creates a new GetProgressHandler. cache may be nil.
func NewGetProgressHandler(syllabusRepo syllabus.Repository, syllabusCache syllabus.Cache, logger *slog.Logger) *GetProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetProgressHandler{
		syllabusRepo:  syllabusRepo,
		syllabusCache: syllabusCache,
		logger:        logger,
	}
}

// Handle executes the progress query with cache-aside reads.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.loadState(ctx, q.StudentID, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_progress: %w", err)
	}

	dto := &ProgressDTO{
		StudentID:         state.StudentID,
		CourseID:          state.CourseID,
		CurrentTopicID:    state.CurrentTopicID,
		Topics:            make([]TopicProgressDTO, 0, len(state.Topics)),
		CompletedTopics:   state.CompletedCount(),
		TotalTopics:       len(state.Topics),
		CompletionPercent: state.CompletionPercent(),
		CourseCompleted:   state.IsComplete(),
	}
	if current, ok := state.CurrentTopic(); ok {
		dto.CurrentTopicID = current.TopicID
	}
	for _, t := range state.Topics {
		dto.Topics = append(dto.Topics, TopicProgressDTO{
			TopicID:    t.TopicID,
			Title:      t.Title,
			Status:     t.Status.String(),
			OrderIndex: t.OrderIndex,
		})
	}
	return dto, nil
}

func (h *GetProgressHandler) loadState(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	if h.syllabusCache != nil {
		if state, err := h.syllabusCache.Get(ctx, studentID, courseID); err == nil {
			return state, nil
		}
	}
	state, err := h.syllabusRepo.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if h.syllabusCache != nil {
		if err := h.syllabusCache.Set(ctx, state, progressCacheTTL); err != nil {
			h.logger.Warn("syllabus cache set failed", slog.Any("error", err))
		}
	}
	return state, nil
}
