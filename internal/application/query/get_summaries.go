package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/summary"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUMMARIES QUERY
// Devuelve las actas pedagógicas del estudiante: el cuaderno de bitácora que
// el archivista va redactando tema a tema.
// ══════════════════════════════════════════════════════════════════════════════

// GetSummariesQuery contiene los parámetros de la consulta.
type GetSummariesQuery struct {
	// StudentID - ID interno del estudiante.
	StudentID string

	// TopicID - opcional: limitar a un tema concreto.
	TopicID string
}

// Validate comprueba los parámetros.
func (q *GetSummariesQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("get_summaries: student_id is required")
	}
	return nil
}

// SummaryDTO - acta de un tema para la vista.
type SummaryDTO struct {
	TopicID            string    `json:"topic_id"`
	CompletionSummary  string    `json:"completion_summary"`
	StudentDoubts      []string  `json:"student_doubts"`
	EffectiveAnalogies string    `json:"effective_analogies"`
	EngagementLevel    string    `json:"engagement_level"`
	NextSessionHook    string    `json:"next_session_hook"`
	CreatedAt          time.Time `json:"created_at"`
}

// GetSummariesHandler handles the GetSummariesQuery.
type GetSummariesHandler struct {
	summaryRepo summary.Repository
}

// NewGetSummariesHandler creates a new GetSummariesHandler.
func NewGetSummariesHandler(summaryRepo summary.Repository) *GetSummariesHandler {
	return &GetSummariesHandler{summaryRepo: summaryRepo}
}

// Handle executes the summaries query.
func (h *GetSummariesHandler) Handle(ctx context.Context, q GetSummariesQuery) ([]SummaryDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		records []*summary.TopicSummary
		err     error
	)
	if q.TopicID != "" {
		var record *summary.TopicSummary
		record, err = h.summaryRepo.GetByStudentAndTopic(ctx, q.StudentID, q.TopicID)
		if record != nil {
			records = []*summary.TopicSummary{record}
		}
	} else {
		records, err = h.summaryRepo.GetByStudent(ctx, q.StudentID)
	}
	if err != nil {
		return nil, fmt.Errorf("get_summaries: %w", err)
	}

	dtos := make([]SummaryDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, SummaryDTO{
			TopicID:            r.TopicID,
			CompletionSummary:  r.CompletionSummary,
			StudentDoubts:      r.Notes.StudentDoubts,
			EffectiveAnalogies: r.Notes.EffectiveAnalogies,
			EngagementLevel:    string(r.Notes.EngagementLevel),
			NextSessionHook:    r.NextSessionHook,
			CreatedAt:          r.CreatedAt,
		})
	}
	return dtos, nil
}
