package syllabus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	state, err := NewState(NewStateParams{
		StudentID: "student-1",
		CourseID:  "course-1",
		Topics: []TopicState{
			{TopicID: "t-1", Title: "Variables"},
			{TopicID: "t-2", Title: "Tipos de datos"},
			{TopicID: "t-3", Title: "Funciones"},
		},
	})
	require.NoError(t, err)
	return state
}

func TestNewState_FirstTopicActive(t *testing.T) {
	state := newTestState(t)

	assert.Equal(t, "t-1", state.CurrentTopicID)
	assert.Equal(t, StatusInProgress, state.Topics[0].Status)
	assert.Equal(t, StatusPending, state.Topics[1].Status)
	assert.Equal(t, StatusPending, state.Topics[2].Status)
}

func TestNewState_ReassignsOrderIndices(t *testing.T) {
	state, err := NewState(NewStateParams{
		StudentID: "student-1",
		CourseID:  "course-1",
		Topics: []TopicState{
			{TopicID: "t-1", OrderIndex: 7},
			{TopicID: "t-2", OrderIndex: 2},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, state.Topics[0].OrderIndex)
	assert.Equal(t, 1, state.Topics[1].OrderIndex)
}

func TestNewState_RequiresIDs(t *testing.T) {
	_, err := NewState(NewStateParams{CourseID: "course-1", Topics: []TopicState{{TopicID: "t-1"}}})
	assert.Error(t, err)

	_, err = NewState(NewStateParams{StudentID: "student-1", Topics: []TopicState{{TopicID: "t-1"}}})
	assert.Error(t, err)
}

func TestNewState_RequiresTopics(t *testing.T) {
	_, err := NewState(NewStateParams{StudentID: "student-1", CourseID: "course-1"})

	assert.ErrorIs(t, err, shared.ErrCourseHasNoTopics)
}

func TestCurrentTopic_FallsBackToInProgress(t *testing.T) {
	state := newTestState(t)
	state.CurrentTopicID = "t-404"

	current, ok := state.CurrentTopic()

	require.True(t, ok)
	assert.Equal(t, "t-1", current.TopicID)
}

func TestTopicByOrderIndex(t *testing.T) {
	state := newTestState(t)

	topic, ok := state.TopicByOrderIndex(1)
	require.True(t, ok)
	assert.Equal(t, "t-2", topic.TopicID)

	_, ok = state.TopicByOrderIndex(3)
	assert.False(t, ok)
}

func TestSetTopicStatus(t *testing.T) {
	state := newTestState(t)

	require.NoError(t, state.SetTopicStatus("t-1", StatusCompleted))
	topic, _ := state.TopicByID("t-1")
	assert.Equal(t, StatusCompleted, topic.Status)

	assert.ErrorIs(t, state.SetTopicStatus("t-404", StatusCompleted), shared.ErrTopicNotInSyllabus)
	assert.ErrorIs(t, state.SetTopicStatus("t-1", TopicStatus("done")), shared.ErrInvalidTopicStatus)
}

func TestCompletionProgress(t *testing.T) {
	state := newTestState(t)
	assert.Equal(t, 0, state.CompletedCount())
	assert.Equal(t, 0, state.CompletionPercent())
	assert.False(t, state.IsComplete())

	require.NoError(t, state.SetTopicStatus("t-1", StatusCompleted))
	assert.Equal(t, 1, state.CompletedCount())
	assert.Equal(t, 33, state.CompletionPercent())

	require.NoError(t, state.SetTopicStatus("t-2", StatusCompleted))
	require.NoError(t, state.SetTopicStatus("t-3", StatusCompleted))
	assert.Equal(t, 100, state.CompletionPercent())
	assert.True(t, state.IsComplete())
	assert.False(t, state.HasInProgress())
}

func TestTopicStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusInProgress))
	assert.False(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusCompleted.CanTransitionTo(StatusCompleted))
}

func TestParseTopicStatus(t *testing.T) {
	status, err := ParseTopicStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseTopicStatus("doing")
	assert.ErrorIs(t, err, shared.ErrInvalidTopicStatus)
}
