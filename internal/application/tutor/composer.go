package tutor

import (
	"encoding/json"
	"fmt"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPT COMPOSER
// Pure functions: given persona, syllabus, history and the student's input,
// produce the exact prompt string for each agent. Deterministic for identical
// inputs; no side effects.
// ══════════════════════════════════════════════════════════════════════════════

// syllabusContext is the wire shape of the syllabus inside the prompt. Field
// order is fixed by the struct, which keeps serialization deterministic.
type syllabusContext struct {
	StudentID      string         `json:"student_id"`
	CourseID       string         `json:"course_id"`
	CurrentTopicID string         `json:"current_topic_id"`
	Topics         []topicContext `json:"topics"`
}

type topicContext struct {
	TopicID    string `json:"topic_id"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status"`
	OrderIndex int    `json:"order_index"`
}

// ComposeTeacherPrompt builds the teacher-agent prompt for one tutoring turn.
// The input is the student's latest message, or SessionInitSentinel when the
// session is being opened without student input.
func ComposeTeacherPrompt(persona course.PersonaConfig, state *syllabus.State, history []chat.Message, input string) (string, error) {
	personaJSON, err := json.Marshal(persona)
	if err != nil {
		return "", fmt.Errorf("marshal persona config: %w", err)
	}

	ctx := syllabusContext{
		StudentID:      state.StudentID,
		CourseID:       state.CourseID,
		CurrentTopicID: state.CurrentTopicID,
		Topics:         make([]topicContext, 0, len(state.Topics)),
	}
	if current, ok := state.CurrentTopic(); ok {
		ctx.CurrentTopicID = current.TopicID
	}
	for _, t := range state.Topics {
		ctx.Topics = append(ctx.Topics, topicContext{
			TopicID:    t.TopicID,
			Title:      t.Title,
			Status:     t.Status.String(),
			OrderIndex: t.OrderIndex,
		})
	}
	syllabusJSON, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("marshal syllabus state: %w", err)
	}

	historyBlock := chat.RenderTranscript(history)
	if historyBlock == "" {
		historyBlock = "[Sin mensajes previos]"
	}

	return fillPrompt(teacherPromptTemplate, map[string]string{
		"PERSONA_JSON":  string(personaJSON),
		"SYLLABUS_JSON": string(syllabusJSON),
		"CHAT_HISTORY":  historyBlock,
		"USER_INPUT":    input,
	}), nil
}

// ComposeNotaryPrompt builds the archivist prompt around a topic transcript.
func ComposeNotaryPrompt(transcript string) string {
	return fillPrompt(notaryPromptTemplate, map[string]string{
		"CHAT_HISTORY": transcript,
	})
}
