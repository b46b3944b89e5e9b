package tutor

import "github.com/AmelieAvondet/tutoria/internal/domain/syllabus"

// ══════════════════════════════════════════════════════════════════════════════
// FALLBACK SYNTHESIZER
// ══════════════════════════════════════════════════════════════════════════════

// NewFallbackUpdate produces the minimal safe update used when the model's
// delta cannot be parsed: the current topic stays in progress, nothing is
// completed and no summary is requested. The student is never blocked by a
// malformed reply; the turn simply makes no progress.
func NewFallbackUpdate(state *syllabus.State) syllabus.StateUpdate {
	currentID := state.CurrentTopicID
	if current, ok := state.CurrentTopic(); ok {
		currentID = current.TopicID
	}
	return syllabus.StateUpdate{
		TriggerSummaryGeneration: false,
		CurrentTopicID:           currentID,
		TopicsUpdated: []syllabus.TopicChange{
			{TopicID: currentID, Status: syllabus.StatusInProgress},
		},
	}
}
