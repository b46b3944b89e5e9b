package tutor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/summary"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVIST (SUMMARIZATION TASK)
// Runs detached from the tutoring turn. Every failure in here is logged and
// swallowed: the archivist must never affect the student-facing response.
// ══════════════════════════════════════════════════════════════════════════════

// summaryPayload is the wire shape of the archivist's JSON reply.
type summaryPayload struct {
	TopicCompletionSummary string `json:"topic_completion_summary"`
	PedagogicalNotes       struct {
		StudentDoubts      []string `json:"student_doubts"`
		EffectiveAnalogies string   `json:"effective_analogies"`
		EngagementLevel    string   `json:"engagement_level"`
	} `json:"pedagogical_notes"`
	NextSessionHook string `json:"next_session_hook"`
}

// Archivist distills a completed topic's transcript into a pedagogical
// record. It subscribes to SummaryRequested events on the in-process bus.
type Archivist struct {
	chats     chat.Repository
	summaries summary.Repository
	model     ModelClient
	guard     DedupeGuard
	bus       shared.EventPublisher
	logger    *slog.Logger
}

// NewArchivist creates an Archivist. guard and bus may be nil.
func NewArchivist(chats chat.Repository, summaries summary.Repository, model ModelClient, guard DedupeGuard, bus shared.EventPublisher, logger *slog.Logger) *Archivist {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archivist{
		chats:     chats,
		summaries: summaries,
		model:     model,
		guard:     guard,
		bus:       bus,
		logger:    logger,
	}
}

// HandleEvent adapts Run to the event bus handler signature. It always
// returns nil: a failed summary is a logged loss, never a retried one.
func (a *Archivist) HandleEvent(event shared.Event) error {
	if event.EventType() != shared.EventSummaryRequested {
		a.logger.Warn("archivist received unexpected event",
			slog.String("event_type", string(event.EventType())))
		return nil
	}
	studentID, topicID := summaryRequestIDs(event)
	if studentID == "" || topicID == "" {
		a.logger.Warn("summary request is missing student or topic",
			slog.String("aggregate_id", event.AggregateID()))
		return nil
	}
	a.Run(context.Background(), studentID, topicID)
	return nil
}

// summaryRequestIDs reads the request fields from the typed event when it was
// published in-process. An event relayed from another instance arrives as a
// generic payload map, so the fields are recovered from there instead.
func summaryRequestIDs(event shared.Event) (studentID, topicID string) {
	if req, ok := event.(shared.SummaryRequestedEvent); ok {
		return req.StudentID, req.TopicID
	}
	payload := event.Payload()
	studentID, _ = payload["student_id"].(string)
	topicID, _ = payload["topic_id"].(string)
	return studentID, topicID
}

// Run executes one archivist pass for (student, topic): read transcript,
// prompt the model, parse the strict-JSON reply, persist the record.
func (a *Archivist) Run(ctx context.Context, studentID, topicID string) {
	log := a.logger.With(
		slog.String("student_id", studentID),
		slog.String("topic_id", topicID))

	if a.guard != nil {
		acquired, err := a.guard.TryAcquire(ctx, studentID, topicID)
		if err != nil {
			// Guard failures degrade to allowing the run.
			log.Warn("dedupe guard unavailable", slog.Any("error", err))
		} else if !acquired {
			log.Info("summary already being generated, skipping")
			return
		}
	}

	messages, err := a.chats.GetByStudentAndTopic(ctx, studentID, topicID)
	if err != nil {
		log.Warn("could not load transcript", slog.Any("error", err))
		return
	}
	transcript := chat.RenderTranscript(messages)
	if transcript == "" {
		log.Warn("skipping summary", slog.Any("error", shared.ErrTranscriptEmpty))
		return
	}

	reply, err := a.model.Generate(ctx, ComposeNotaryPrompt(transcript))
	if err != nil {
		log.Error("archivist model call failed", slog.Any("error", err))
		return
	}

	record, err := a.parseSummary(studentID, topicID, reply)
	if err != nil {
		log.Error("archivist reply unusable", slog.Any("error", err))
		return
	}

	if err := a.summaries.Save(ctx, record); err != nil {
		if shared.IsAlreadyExists(err) {
			log.Info("summary already recorded for topic")
			return
		}
		log.Error("could not save topic summary", slog.Any("error", err))
		return
	}

	log.Info("topic summary saved", slog.String("summary_id", record.ID))
	if a.bus != nil {
		if err := a.bus.Publish(shared.NewSummarySavedEvent(studentID, topicID, record.ID)); err != nil {
			log.Warn("summary event publish failed", slog.Any("error", err))
		}
	}
}

// parseSummary applies the same fence-tolerant cleanup as the teacher-turn
// parser, minus the delimiter split, then validates the record.
func (a *Archivist) parseSummary(studentID, topicID, reply string) (*summary.TopicSummary, error) {
	cleaned := stripCodeFences(reply)
	if cleaned == "" {
		return nil, &ParseError{Raw: reply}
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &ParseError{Raw: cleaned, Err: err}
	}
	if strings.TrimSpace(payload.TopicCompletionSummary) == "" {
		return nil, &SchemaError{Field: "topic_completion_summary", Reason: "field is required"}
	}

	level, err := summary.ParseEngagementLevel(payload.PedagogicalNotes.EngagementLevel)
	if err != nil {
		// Models occasionally omit or mangle the level; a missing level
		// is recorded as Medium rather than losing the whole record.
		level = summary.EngagementMedium
	}

	return &summary.TopicSummary{
		ID:                uuid.NewString(),
		StudentID:         studentID,
		TopicID:           topicID,
		CompletionSummary: payload.TopicCompletionSummary,
		Notes: summary.PedagogicalNotes{
			StudentDoubts:      payload.PedagogicalNotes.StudentDoubts,
			EffectiveAnalogies: payload.PedagogicalNotes.EffectiveAnalogies,
			EngagementLevel:    level,
		},
		NextSessionHook: payload.NextSessionHook,
		CreatedAt:       time.Now(),
	}, nil
}
