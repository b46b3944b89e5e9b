package tutor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// ORCHESTRATOR
// One synchronous pipeline per student message: load context, prompt the
// teacher agent, split and validate its reply, reconcile the syllabus,
// persist the turn, return the display text. The only step that does not
// block the caller is the summary trigger, published to the async bus after
// the response is ready.
// ══════════════════════════════════════════════════════════════════════════════

// SafeFallbackMessage is returned to the student when the teacher model call
// fails. No state is changed and nothing is written to the history.
const SafeFallbackMessage = "Lo siento, estoy teniendo problemas técnicos en este momento. Por favor, inténtalo de nuevo en unos instantes."

const defaultHistoryLimit = 50

const syllabusCacheTTL = 5 * time.Minute

// TurnResult is what a tutoring turn hands back to the transport layer.
type TurnResult struct {
	// Response is the student-facing text.
	Response string

	// Degraded is set when the model call failed and Response carries the
	// safe fallback message.
	Degraded bool

	// CurrentTopicID is the active topic after reconciliation.
	CurrentTopicID string

	// CourseCompleted is set when this turn completed the last topic.
	CourseCompleted bool

	// SummaryRequested is set when an archivist run was triggered.
	SummaryRequested bool
}

// Orchestrator wires the tutoring pipeline. All collaborators are injected;
// tests substitute fakes for every port.
type Orchestrator struct {
	syllabi    syllabus.Repository
	cache      syllabus.Cache
	courses    course.Repository
	chats      chat.Repository
	model      ModelClient
	reconciler *Reconciler
	bus        shared.EventPublisher
	logger     *slog.Logger

	historyLimit int
}

// NewOrchestrator creates an Orchestrator. cache and bus may be nil; without
// a bus the summary trigger is skipped (and logged).
func NewOrchestrator(
	syllabi syllabus.Repository,
	cache syllabus.Cache,
	courses course.Repository,
	chats chat.Repository,
	model ModelClient,
	reconciler *Reconciler,
	bus shared.EventPublisher,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		syllabi:      syllabi,
		cache:        cache,
		courses:      courses,
		chats:        chats,
		model:        model,
		reconciler:   reconciler,
		bus:          bus,
		logger:       logger,
		historyLimit: defaultHistoryLimit,
	}
}

// HandleStudentMessage runs one tutoring turn for an incoming message.
// Returns ErrSyllabusNotFound when the student is not enrolled.
func (o *Orchestrator) HandleStudentMessage(ctx context.Context, studentID, courseID, message string) (*TurnResult, error) {
	return o.runTurn(ctx, studentID, courseID, message, false)
}

// InitializeSession opens the conversation for the student's current topic
// without waiting for student input: the same pipeline runs with a sentinel
// in place of the message, and only the tutor's greeting enters the history.
func (o *Orchestrator) InitializeSession(ctx context.Context, studentID, courseID string) (*TurnResult, error) {
	return o.runTurn(ctx, studentID, courseID, SessionInitSentinel, true)
}

func (o *Orchestrator) runTurn(ctx context.Context, studentID, courseID, input string, isInit bool) (*TurnResult, error) {
	log := o.logger.With(
		slog.String("student_id", studentID),
		slog.String("course_id", courseID))

	state, err := o.loadSyllabus(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	currentTopicID := state.CurrentTopicID
	if current, ok := state.CurrentTopic(); ok {
		currentTopicID = current.TopicID
	}

	persona := o.loadPersona(ctx, courseID)

	var history []chat.Message
	if !isInit {
		history, err = o.chats.GetRecent(ctx, studentID, currentTopicID, o.historyLimit)
		if err != nil {
			// The turn can proceed with an empty context block.
			log.Warn("could not load chat history", slog.Any("error", err))
			history = nil
		}
	}

	prompt, err := ComposeTeacherPrompt(persona, state, history, input)
	if err != nil {
		return nil, shared.WrapError("tutor", "Compose", shared.ErrInvalidEntity, "could not compose teacher prompt", err)
	}

	raw, err := o.model.Generate(ctx, prompt)
	if err != nil || raw == "" {
		// Fatal to this turn only: apologize, change nothing.
		log.Error("teacher model call failed", slog.Any("error", err))
		return &TurnResult{
			Response:       SafeFallbackMessage,
			Degraded:       true,
			CurrentTopicID: currentTopicID,
		}, nil
	}

	displayText, deltaText := SplitResponse(raw)

	update, parseErr := ParseStateUpdate(deltaText)
	if parseErr != nil {
		log.Warn("state delta invalid, using fallback update", slog.Any("error", parseErr))
		fallback := NewFallbackUpdate(state)
		update = &fallback
	}

	reconciled := o.reconciler.Reconcile(ctx, state, *update)
	if reconciled.PartialFailure() {
		log.Warn("reconciliation applied partially",
			slog.Int("applied", len(reconciled.Applied)),
			slog.Int("failed", len(reconciled.Failed)))
	}

	o.appendTurn(ctx, studentID, currentTopicID, input, displayText, isInit, log)
	o.publishTurnCompleted(studentID, courseID, currentTopicID, log)

	result := &TurnResult{
		Response:        displayText,
		CurrentTopicID:  o.resolveCurrentTopic(state, *update),
		CourseCompleted: reconciled.CourseCompleted,
	}

	// Fire and forget: the student's response never waits for the archivist.
	if update.TriggerSummaryGeneration {
		result.SummaryRequested = o.requestSummary(studentID, courseID, currentTopicID, *update, log)
	}

	return result, nil
}

// loadSyllabus reads through the cache when one is configured.
func (o *Orchestrator) loadSyllabus(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	if o.cache != nil {
		if state, err := o.cache.Get(ctx, studentID, courseID); err == nil {
			return state, nil
		}
	}
	state, err := o.syllabi.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		if err := o.cache.Set(ctx, state, syllabusCacheTTL); err != nil {
			o.logger.Warn("syllabus cache set failed", slog.Any("error", err))
		}
	}
	return state, nil
}

// loadPersona falls back to the default persona when the lookup fails; a
// missing persona never blocks a turn.
func (o *Orchestrator) loadPersona(ctx context.Context, courseID string) course.PersonaConfig {
	persona, err := o.courses.GetPersona(ctx, courseID)
	if err != nil {
		o.logger.Warn("could not load persona config, using defaults",
			slog.String("course_id", courseID),
			slog.Any("error", err))
		return course.DefaultPersonaConfig()
	}
	return persona
}

// appendTurn persists the turn into the chat history. Only the visible text
// is stored; the state block never enters the transcript. Write failures are
// logged and the response is still returned.
func (o *Orchestrator) appendTurn(ctx context.Context, studentID, topicID, input, displayText string, isInit bool, log *slog.Logger) {
	now := time.Now()
	if !isInit {
		userMsg := &chat.Message{
			ID:        uuid.NewString(),
			StudentID: studentID,
			TopicID:   topicID,
			Role:      chat.RoleUser,
			Content:   input,
			CreatedAt: now,
		}
		if err := o.chats.Append(ctx, userMsg); err != nil {
			log.Warn("could not save student message", slog.Any("error", err))
		}
	}
	assistantMsg := &chat.Message{
		ID:        uuid.NewString(),
		StudentID: studentID,
		TopicID:   topicID,
		Role:      chat.RoleAssistant,
		Content:   displayText,
		CreatedAt: now,
	}
	if err := o.chats.Append(ctx, assistantMsg); err != nil {
		log.Warn("could not save tutor message", slog.Any("error", err))
	}
}

// publishTurnCompleted announces a finished turn on the bus. Degraded turns
// return before reaching this point, so only real responses are announced.
func (o *Orchestrator) publishTurnCompleted(studentID, courseID, topicID string, log *slog.Logger) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(shared.NewTurnCompletedEvent(studentID, courseID, topicID)); err != nil {
		log.Warn("turn completed publish failed", slog.Any("error", err))
	}
}

// resolveCurrentTopic prefers the reconciled in-memory state, falling back
// to the update's claim when the state has no active topic.
func (o *Orchestrator) resolveCurrentTopic(state *syllabus.State, update syllabus.StateUpdate) string {
	if current, ok := state.InProgressTopic(); ok {
		return current.TopicID
	}
	return update.CurrentTopicID
}

// requestSummary publishes the archivist trigger for the topic that just
// completed. The transcript lives under the topic the conversation was held
// on, so the completed topic is what gets summarized, not the successor the
// model already switched current_topic_id to.
func (o *Orchestrator) requestSummary(studentID, courseID, conversationTopicID string, update syllabus.StateUpdate, log *slog.Logger) bool {
	topicID := conversationTopicID
	if completed := update.CompletedTopics(); len(completed) > 0 {
		topicID = completed[0]
	}
	if o.bus == nil {
		log.Warn("summary requested but no event bus configured",
			slog.String("topic_id", topicID))
		return false
	}
	if err := o.bus.Publish(shared.NewSummaryRequestedEvent(studentID, courseID, topicID)); err != nil {
		// A dropped trigger is a lost summary, never a failed turn.
		if !errors.Is(err, context.Canceled) {
			log.Warn("summary trigger publish failed",
				slog.String("topic_id", topicID),
				slog.Any("error", err))
		}
		return false
	}
	log.Info("summary generation triggered", slog.String("topic_id", topicID))
	return true
}
