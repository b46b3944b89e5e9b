package tutor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

func TestParseStateUpdate_Valid(t *testing.T) {
	delta := `{"trigger_summary_generation": true, "current_topic_id": "t-2", "topics_updated": [` +
		`{"topic_id": "t-1", "status": "completed"}, {"topic_id": "t-2", "status": "in_progress"}]}`

	update, err := ParseStateUpdate(delta)

	require.NoError(t, err)
	assert.True(t, update.TriggerSummaryGeneration)
	assert.Equal(t, "t-2", update.CurrentTopicID)
	require.Len(t, update.TopicsUpdated, 2)
	assert.Equal(t, syllabus.TopicChange{TopicID: "t-1", Status: syllabus.StatusCompleted}, update.TopicsUpdated[0])
	assert.Equal(t, syllabus.TopicChange{TopicID: "t-2", Status: syllabus.StatusInProgress}, update.TopicsUpdated[1])
}

func TestParseStateUpdate_EmptyTopicsList(t *testing.T) {
	delta := `{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": []}`

	update, err := ParseStateUpdate(delta)

	require.NoError(t, err)
	assert.Empty(t, update.TopicsUpdated)
	assert.True(t, update.IsNoOp())
}

func TestParseStateUpdate_EmptyDelta(t *testing.T) {
	update, err := ParseStateUpdate("   ")

	assert.Nil(t, update)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, errors.Is(err, shared.ErrInvalidFormat))
}

func TestParseStateUpdate_NotJSON(t *testing.T) {
	update, err := ParseStateUpdate("esto no es json {")

	assert.Nil(t, update)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Error(t, parseErr.Err)
}

func TestParseStateUpdate_TopLevelNotObject(t *testing.T) {
	update, err := ParseStateUpdate(`["not", "an", "object"]`)

	assert.Nil(t, update)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "$", schemaErr.Field)
}

func TestParseStateUpdate_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		delta string
		field string
	}{
		{
			name:  "missing trigger",
			delta: `{"current_topic_id": "t-1", "topics_updated": []}`,
			field: "trigger_summary_generation",
		},
		{
			name:  "missing current topic",
			delta: `{"trigger_summary_generation": false, "topics_updated": []}`,
			field: "current_topic_id",
		},
		{
			name:  "missing topics list",
			delta: `{"trigger_summary_generation": false, "current_topic_id": "t-1"}`,
			field: "topics_updated",
		},
		{
			name:  "entry without topic id",
			delta: `{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"status": "completed"}]}`,
			field: "topics_updated[0].topic_id",
		},
		{
			name:  "entry without status",
			delta: `{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1"}]}`,
			field: "topics_updated[0].status",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			update, err := ParseStateUpdate(tc.delta)

			assert.Nil(t, update)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tc.field, schemaErr.Field)
		})
	}
}

func TestParseStateUpdate_WrongFieldTypes(t *testing.T) {
	cases := []struct {
		name  string
		delta string
		field string
	}{
		{
			name:  "trigger is a string",
			delta: `{"trigger_summary_generation": "yes", "current_topic_id": "t-1", "topics_updated": []}`,
			field: "trigger_summary_generation",
		},
		{
			name:  "current topic is a number",
			delta: `{"trigger_summary_generation": false, "current_topic_id": 42, "topics_updated": []}`,
			field: "current_topic_id",
		},
		{
			name:  "topics is not a list",
			delta: `{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": {}}`,
			field: "topics_updated",
		},
		{
			name:  "unknown status value",
			delta: `{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "done"}]}`,
			field: "topics_updated[0].status",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			update, err := ParseStateUpdate(tc.delta)

			assert.Nil(t, update)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tc.field, schemaErr.Field)
			assert.True(t, errors.Is(err, shared.ErrInvalidFormat))
		})
	}
}

func TestParseStateUpdate_DoesNotCheckTopicExistence(t *testing.T) {
	// Topic IDs outside the syllabus are a reconciliation concern, not a
	// parsing one.
	delta := `{"trigger_summary_generation": false, "current_topic_id": "t-404", "topics_updated": [{"topic_id": "t-404", "status": "in_progress"}]}`

	update, err := ParseStateUpdate(delta)

	assert.NoError(t, err)
	assert.Equal(t, "t-404", update.CurrentTopicID)
}
