package tutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

func newTestReconciler(repo *fakeSyllabusRepo, cache *fakeSyllabusCache, bus *fakeBus) *Reconciler {
	return NewReconciler(repo, cache, bus, nil)
}

func TestReconcile_AppliesAllEntries(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	cache := &fakeSyllabusCache{}
	bus := &fakeBus{}
	state := threeTopicState()

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-2",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-1", Status: syllabus.StatusCompleted},
			{TopicID: "t-2", Status: syllabus.StatusInProgress},
		},
	}

	result := newTestReconciler(repo, cache, bus).Reconcile(context.Background(), state, update)

	assert.Len(t, result.Applied, 2)
	assert.Empty(t, result.Failed)
	assert.False(t, result.PartialFailure())
	assert.Empty(t, result.RepairedTopicID)
	assert.False(t, result.CourseCompleted)

	require.Len(t, repo.writes, 2)
	assert.Equal(t, statusWrite{TopicID: "t-1", Status: syllabus.StatusCompleted}, repo.writes[0])
	assert.Equal(t, statusWrite{TopicID: "t-2", Status: syllabus.StatusInProgress}, repo.writes[1])

	// The in-memory snapshot mirrors what was written.
	topic, ok := state.TopicByID("t-1")
	require.True(t, ok)
	assert.Equal(t, syllabus.StatusCompleted, topic.Status)
	assert.Equal(t, 1, cache.invalidates)
	assert.Contains(t, bus.typesPublished(), shared.EventTopicCompleted)
	assert.Contains(t, bus.typesPublished(), shared.EventTopicActivated)
}

func TestReconcile_RepairActivatesSuccessor(t *testing.T) {
	// The model marked t-1 completed but forgot the in_progress entry for
	// the successor. The repair check activates t-2.
	repo := &fakeSyllabusRepo{}
	bus := &fakeBus{}
	state := threeTopicState()

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-1",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-1", Status: syllabus.StatusCompleted},
		},
	}

	result := newTestReconciler(repo, &fakeSyllabusCache{}, bus).Reconcile(context.Background(), state, update)

	assert.Equal(t, "t-2", result.RepairedTopicID)
	assert.Equal(t, "t-2", state.CurrentTopicID)
	assert.False(t, result.CourseCompleted)

	require.Len(t, repo.writes, 2)
	assert.Equal(t, statusWrite{TopicID: "t-2", Status: syllabus.StatusInProgress}, repo.writes[1])

	inProgress, ok := state.InProgressTopic()
	require.True(t, ok)
	assert.Equal(t, "t-2", inProgress.TopicID)
	assert.Contains(t, bus.typesPublished(), shared.EventSyllabusRepaired)
	assert.Contains(t, bus.typesPublished(), shared.EventTopicActivated)
}

func TestReconcile_RepairIsIdempotent(t *testing.T) {
	// Re-applying the same completion delta must not advance the syllabus a
	// second position: the successor is always OrderIndex+1 of the completed
	// topic, regardless of its current status.
	repo := &fakeSyllabusRepo{}
	state := threeTopicState()

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-1",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-1", Status: syllabus.StatusCompleted},
		},
	}

	r := newTestReconciler(repo, &fakeSyllabusCache{}, &fakeBus{})

	first := r.Reconcile(context.Background(), state, update)
	assert.Equal(t, "t-2", first.RepairedTopicID)

	second := r.Reconcile(context.Background(), state, update)
	assert.Equal(t, "t-2", second.RepairedTopicID)

	// t-3 must never have been touched.
	for _, w := range repo.writes {
		assert.NotEqual(t, "t-3", w.TopicID)
	}
}

func TestReconcile_LastTopicCompletesTheCourse(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	bus := &fakeBus{}
	state := threeTopicState()
	require.NoError(t, state.SetTopicStatus("t-1", syllabus.StatusCompleted))
	require.NoError(t, state.SetTopicStatus("t-2", syllabus.StatusCompleted))
	require.NoError(t, state.SetTopicStatus("t-3", syllabus.StatusInProgress))

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-3",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-3", Status: syllabus.StatusCompleted},
		},
	}

	result := newTestReconciler(repo, &fakeSyllabusCache{}, bus).Reconcile(context.Background(), state, update)

	assert.True(t, result.CourseCompleted)
	assert.Empty(t, result.RepairedTopicID)
	assert.True(t, state.IsComplete())
	assert.Contains(t, bus.typesPublished(), shared.EventCourseCompleted)

	// Only the completion itself was written; there is no successor to
	// activate.
	require.Len(t, repo.writes, 1)
}

func TestReconcile_WriteFailureDoesNotAbortRemaining(t *testing.T) {
	repo := &fakeSyllabusRepo{failTopic: map[string]error{"t-1": errBoom}}
	state := threeTopicState()

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-2",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-1", Status: syllabus.StatusCompleted},
			{TopicID: "t-2", Status: syllabus.StatusInProgress},
		},
	}

	result := newTestReconciler(repo, &fakeSyllabusCache{}, &fakeBus{}).Reconcile(context.Background(), state, update)

	assert.True(t, result.PartialFailure())
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "t-1", result.Failed[0].TopicID)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "t-2", result.Applied[0].TopicID)
}

func TestReconcile_RegressiveChangeIsRejected(t *testing.T) {
	// The model tried to reopen a completed topic. The entry is refused
	// before it reaches the repository.
	repo := &fakeSyllabusRepo{}
	state := threeTopicState()
	require.NoError(t, state.SetTopicStatus("t-1", syllabus.StatusCompleted))

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-1",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-1", Status: syllabus.StatusInProgress},
		},
	}

	result := newTestReconciler(repo, &fakeSyllabusCache{}, &fakeBus{}).Reconcile(context.Background(), state, update)

	assert.True(t, result.PartialFailure())
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "t-1", result.Failed[0].TopicID)
	assert.Empty(t, repo.writes)

	topic, ok := state.TopicByID("t-1")
	require.True(t, ok)
	assert.Equal(t, syllabus.StatusCompleted, topic.Status)
}

func TestReconcile_UnknownCompletedTopicSkipsRepair(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	state := threeTopicState()

	update := syllabus.StateUpdate{
		CurrentTopicID: "t-404",
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: "t-404", Status: syllabus.StatusCompleted},
		},
	}

	result := newTestReconciler(repo, &fakeSyllabusCache{}, &fakeBus{}).Reconcile(context.Background(), state, update)

	assert.Empty(t, result.RepairedTopicID)
	assert.False(t, result.CourseCompleted)
}

func TestReconcile_NoChangesLeavesCacheAlone(t *testing.T) {
	cache := &fakeSyllabusCache{}
	state := threeTopicState()

	update := syllabus.StateUpdate{CurrentTopicID: "t-1"}

	result := newTestReconciler(&fakeSyllabusRepo{}, cache, &fakeBus{}).Reconcile(context.Background(), state, update)

	assert.Empty(t, result.Applied)
	assert.Zero(t, cache.invalidates)
}
