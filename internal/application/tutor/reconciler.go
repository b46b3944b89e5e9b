package tutor

import (
	"context"
	"log/slog"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYLLABUS RECONCILER
// Applies a StateUpdate against the persisted syllabus, enforcing the
// "exactly one active topic" invariant through the repair check.
// ══════════════════════════════════════════════════════════════════════════════

// ReconcileResult reports what a reconciliation actually did.
type ReconcileResult struct {
	// Applied lists the topic changes that were written successfully.
	Applied []syllabus.TopicChange

	// Failed lists the topic changes whose write failed. Failures are
	// best-effort: they are logged and the remaining entries still apply.
	Failed []syllabus.TopicChange

	// RepairedTopicID is set when the repair check had to activate the
	// successor topic because the update left no topic in progress.
	RepairedTopicID string

	// CourseCompleted is set when a topic completed with no pending
	// successor. Not an error.
	CourseCompleted bool
}

// PartialFailure indicates at least one write failed.
func (r ReconcileResult) PartialFailure() bool {
	return len(r.Failed) > 0
}

// Reconciler mutates the persisted syllabus according to model deltas. It is
// the only component allowed to write syllabus state after enrollment.
type Reconciler struct {
	repo   syllabus.Repository
	cache  syllabus.Cache
	bus    shared.EventPublisher
	logger *slog.Logger
}

// NewReconciler creates a Reconciler. cache and bus may be nil.
func NewReconciler(repo syllabus.Repository, cache syllabus.Cache, bus shared.EventPublisher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{repo: repo, cache: cache, bus: bus, logger: logger}
}

// Reconcile applies the update to the student's syllabus. Entries that
// request an illegal status transition are rejected before the write. Each
// remaining entry is written independently; a failed write is logged and
// does not abort the remaining entries. There is no rollback and no retry: a partial write is
// left for the next turn's repair check to straighten out.
//
// The repair check runs on the intended update, not on what was actually
// persisted. A write failure followed by a repair can therefore activate a
// successor whose predecessor never got marked completed.
func (r *Reconciler) Reconcile(ctx context.Context, state *syllabus.State, update syllabus.StateUpdate) ReconcileResult {
	result := ReconcileResult{}

	for _, change := range update.TopicsUpdated {
		prev, known := state.TopicByID(change.TopicID)
		if known && !prev.Status.CanTransitionTo(change.Status) {
			// Regressions like completed back to in_progress never reach
			// the repository.
			r.logger.Warn("rejected topic status change",
				slog.String("student_id", state.StudentID),
				slog.String("topic_id", change.TopicID),
				slog.String("from", prev.Status.String()),
				slog.String("to", change.Status.String()),
				slog.Any("error", shared.ErrInvalidStatusChange))
			result.Failed = append(result.Failed, change)
			continue
		}

		err := r.repo.SetTopicStatus(ctx, state.StudentID, state.CourseID, change.TopicID, change.Status)
		if err != nil {
			r.logger.Error("syllabus write failed",
				slog.String("student_id", state.StudentID),
				slog.String("topic_id", change.TopicID),
				slog.String("status", change.Status.String()),
				slog.Any("error", err))
			result.Failed = append(result.Failed, change)
			continue
		}
		result.Applied = append(result.Applied, change)

		// Keep the in-memory snapshot aligned so the repair check and
		// the caller see what was just written.
		if applyErr := state.SetTopicStatus(change.TopicID, change.Status); applyErr != nil {
			r.logger.Warn("update referenced topic outside syllabus",
				slog.String("topic_id", change.TopicID))
		}

		switch {
		case change.Status == syllabus.StatusCompleted:
			r.publish(shared.NewTopicCompletedEvent(state.StudentID, state.CourseID, change.TopicID))
		case change.Status == syllabus.StatusInProgress && (!known || prev.Status != syllabus.StatusInProgress):
			r.publish(shared.NewTopicActivatedEvent(state.StudentID, state.CourseID, change.TopicID))
		}
	}

	r.repair(ctx, state, update, &result)

	if len(result.Applied) > 0 || result.RepairedTopicID != "" {
		r.invalidateCache(ctx, state)
	}
	return result
}

// repair activates the next topic when a completion left the syllabus with
// no active topic. A course whose last topic completes has no successor;
// that is course completion, not a failure.
func (r *Reconciler) repair(ctx context.Context, state *syllabus.State, update syllabus.StateUpdate, result *ReconcileResult) {
	completed := update.CompletedTopics()
	if len(completed) == 0 {
		return
	}
	for _, change := range update.TopicsUpdated {
		if change.Status == syllabus.StatusInProgress {
			return
		}
	}

	completedTopic, ok := state.TopicByID(completed[0])
	if !ok {
		r.logger.Warn("completed topic not found in syllabus, skipping repair",
			slog.String("topic_id", completed[0]))
		return
	}

	next, ok := state.TopicByOrderIndex(completedTopic.OrderIndex + 1)
	if !ok {
		result.CourseCompleted = true
		r.logger.Info("course completed",
			slog.String("student_id", state.StudentID),
			slog.String("course_id", state.CourseID))
		r.publish(shared.NewCourseCompletedEvent(state.StudentID, state.CourseID, completedTopic.TopicID))
		return
	}

	err := r.repo.SetTopicStatus(ctx, state.StudentID, state.CourseID, next.TopicID, syllabus.StatusInProgress)
	if err != nil {
		r.logger.Error("repair activation failed",
			slog.String("student_id", state.StudentID),
			slog.String("topic_id", next.TopicID),
			slog.Any("error", err))
		return
	}

	result.RepairedTopicID = next.TopicID
	state.CurrentTopicID = next.TopicID
	if applyErr := state.SetTopicStatus(next.TopicID, syllabus.StatusInProgress); applyErr != nil {
		r.logger.Warn("repair could not update in-memory state",
			slog.String("topic_id", next.TopicID))
	}

	r.logger.Info("syllabus repaired: activated successor topic",
		slog.String("student_id", state.StudentID),
		slog.String("activated_topic", next.TopicID))
	r.publish(shared.NewTopicActivatedEvent(state.StudentID, state.CourseID, next.TopicID))
	r.publish(shared.NewSyllabusRepairedEvent(state.StudentID, state.CourseID, next.TopicID, next.OrderIndex))
}

func (r *Reconciler) publish(event shared.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(event); err != nil {
		r.logger.Warn("event publish failed",
			slog.String("event_type", string(event.EventType())),
			slog.Any("error", err))
	}
}

func (r *Reconciler) invalidateCache(ctx context.Context, state *syllabus.State) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, state.StudentID, state.CourseID); err != nil {
		r.logger.Warn("syllabus cache invalidation failed",
			slog.String("student_id", state.StudentID),
			slog.Any("error", err))
	}
}
