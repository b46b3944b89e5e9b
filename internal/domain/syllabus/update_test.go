package syllabus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateUpdate_IsNoOp(t *testing.T) {
	noop := StateUpdate{
		CurrentTopicID: "t-1",
		TopicsUpdated:  []TopicChange{{TopicID: "t-1", Status: StatusInProgress}},
	}
	assert.True(t, noop.IsNoOp())

	completion := StateUpdate{
		CurrentTopicID: "t-2",
		TopicsUpdated:  []TopicChange{{TopicID: "t-1", Status: StatusCompleted}},
	}
	assert.False(t, completion.IsNoOp())

	trigger := StateUpdate{TriggerSummaryGeneration: true, CurrentTopicID: "t-1"}
	assert.False(t, trigger.IsNoOp())
}

func TestStateUpdate_CompletedTopics(t *testing.T) {
	update := StateUpdate{
		TopicsUpdated: []TopicChange{
			{TopicID: "t-1", Status: StatusCompleted},
			{TopicID: "t-2", Status: StatusInProgress},
			{TopicID: "t-3", Status: StatusCompleted},
		},
	}

	assert.Equal(t, []string{"t-1", "t-3"}, update.CompletedTopics())
	assert.Empty(t, StateUpdate{}.CompletedTopics())
}

func TestStateUpdate_LeavesInProgress(t *testing.T) {
	state := &State{
		StudentID: "student-1",
		CourseID:  "course-1",
		Topics: []TopicState{
			{TopicID: "t-1", Status: StatusInProgress, OrderIndex: 0},
			{TopicID: "t-2", Status: StatusPending, OrderIndex: 1},
		},
	}

	// Completing t-1 while activating t-2 keeps an active topic.
	good := StateUpdate{TopicsUpdated: []TopicChange{
		{TopicID: "t-1", Status: StatusCompleted},
		{TopicID: "t-2", Status: StatusInProgress},
	}}
	assert.True(t, good.LeavesInProgress(state))

	// Completing t-1 alone leaves the syllabus with nothing active; this
	// is the situation the reconciler's repair check exists for.
	bad := StateUpdate{TopicsUpdated: []TopicChange{
		{TopicID: "t-1", Status: StatusCompleted},
	}}
	assert.False(t, bad.LeavesInProgress(state))

	// An update that touches nothing inherits the state's active topic.
	require.True(t, StateUpdate{}.LeavesInProgress(state))
}
