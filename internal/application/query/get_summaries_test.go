package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/summary"
)

func sampleSummaries() []*summary.TopicSummary {
	return []*summary.TopicSummary{
		{
			ID:                "sum-1",
			StudentID:         "student-1",
			TopicID:           "t-1",
			CompletionSummary: "Dominó las variables.",
			Notes: summary.PedagogicalNotes{
				StudentDoubts:      []string{"variable vs constante"},
				EffectiveAnalogies: "cajas etiquetadas",
				EngagementLevel:    summary.EngagementHigh,
			},
			NextSessionHook: "Toca tipos de datos.",
			CreatedAt:       time.Now(),
		},
		{
			ID:                "sum-2",
			StudentID:         "student-1",
			TopicID:           "t-2",
			CompletionSummary: "Entendió los tipos básicos.",
			Notes:             summary.PedagogicalNotes{EngagementLevel: summary.EngagementMedium},
		},
	}
}

func TestGetSummaries_AllForStudent(t *testing.T) {
	handler := NewGetSummariesHandler(&fakeSummaryRepo{records: sampleSummaries()})

	dtos, err := handler.Handle(context.Background(), GetSummariesQuery{StudentID: "student-1"})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "t-1", dtos[0].TopicID)
	assert.Equal(t, "High", dtos[0].EngagementLevel)
	assert.Equal(t, []string{"variable vs constante"}, dtos[0].StudentDoubts)
	assert.Equal(t, "t-2", dtos[1].TopicID)
}

func TestGetSummaries_SingleTopic(t *testing.T) {
	handler := NewGetSummariesHandler(&fakeSummaryRepo{records: sampleSummaries()})

	dtos, err := handler.Handle(context.Background(), GetSummariesQuery{StudentID: "student-1", TopicID: "t-2"})

	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "t-2", dtos[0].TopicID)
}

func TestGetSummaries_TopicWithoutSummary(t *testing.T) {
	handler := NewGetSummariesHandler(&fakeSummaryRepo{records: sampleSummaries()})

	dtos, err := handler.Handle(context.Background(), GetSummariesQuery{StudentID: "student-1", TopicID: "t-404"})

	assert.Nil(t, dtos)
	assert.Error(t, err)
}

func TestGetSummaries_RequiresStudentID(t *testing.T) {
	handler := NewGetSummariesHandler(&fakeSummaryRepo{})

	_, err := handler.Handle(context.Background(), GetSummariesQuery{})

	assert.Error(t, err)
}
