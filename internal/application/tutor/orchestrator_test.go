package tutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

type orchestratorFixture struct {
	repo  *fakeSyllabusRepo
	cache *fakeSyllabusCache
	chats *fakeChatRepo
	model *fakeModel
	bus   *fakeBus
	orch  *Orchestrator
}

func newOrchestratorFixture(state *syllabus.State) *orchestratorFixture {
	f := &orchestratorFixture{
		repo:  &fakeSyllabusRepo{state: state},
		cache: &fakeSyllabusCache{},
		chats: &fakeChatRepo{},
		model: &fakeModel{},
		bus:   &fakeBus{},
	}
	courses := &fakeCourseRepo{persona: course.DefaultPersonaConfig()}
	reconciler := NewReconciler(f.repo, f.cache, f.bus, nil)
	f.orch = NewOrchestrator(f.repo, f.cache, courses, f.chats, f.model, reconciler, f.bus, nil)
	return f
}

func TestHandleStudentMessage_HappyPath(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = "Sigamos con las variables.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "no entiendo")

	require.NoError(t, err)
	assert.Equal(t, "Sigamos con las variables.", result.Response)
	assert.False(t, result.Degraded)
	assert.Equal(t, "t-1", result.CurrentTopicID)
	assert.False(t, result.CourseCompleted)
	assert.False(t, result.SummaryRequested)

	// Both halves of the turn enter the history, in order, without the
	// state block.
	require.Len(t, f.chats.appended, 2)
	assert.Equal(t, chat.RoleUser, f.chats.appended[0].Role)
	assert.Equal(t, "no entiendo", f.chats.appended[0].Content)
	assert.Equal(t, chat.RoleAssistant, f.chats.appended[1].Role)
	assert.Equal(t, "Sigamos con las variables.", f.chats.appended[1].Content)
	assert.NotContains(t, f.chats.appended[1].Content, StateDelimiter)

	// A finished turn is announced on the bus.
	assert.Contains(t, f.bus.typesPublished(), shared.EventTurnCompleted)
}

func TestHandleStudentMessage_TopicCompletionTriggersSummary(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = "¡Excelente! Pasemos a los tipos de datos.\n" + StateDelimiter +
		`{"trigger_summary_generation": true, "current_topic_id": "t-2", "topics_updated": [` +
		`{"topic_id": "t-1", "status": "completed"}, {"topic_id": "t-2", "status": "in_progress"}]}`

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "ya lo entendí")

	require.NoError(t, err)
	assert.True(t, result.SummaryRequested)
	assert.Equal(t, "t-2", result.CurrentTopicID)

	// The summary request carries the topic the conversation was held on,
	// not the successor the model already switched to.
	var summaryEvents []shared.SummaryRequestedEvent
	for _, e := range f.bus.events {
		if req, ok := e.(shared.SummaryRequestedEvent); ok {
			summaryEvents = append(summaryEvents, req)
		}
	}
	require.Len(t, summaryEvents, 1)
	assert.Equal(t, "t-1", summaryEvents[0].TopicID)
	assert.Equal(t, "student-1", summaryEvents[0].StudentID)
}

func TestHandleStudentMessage_ModelFailureDegradesSafely(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.err = errBoom

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, SafeFallbackMessage, result.Response)
	assert.Equal(t, "t-1", result.CurrentTopicID)

	// A degraded turn changes nothing: no syllabus writes, no history.
	assert.Empty(t, f.repo.writes)
	assert.Empty(t, f.chats.appended)
	assert.Empty(t, f.bus.events)
}

func TestHandleStudentMessage_EmptyModelReplyDegradesSafely(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = ""

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, SafeFallbackMessage, result.Response)
}

func TestHandleStudentMessage_MalformedDeltaUsesFallback(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = "Una variable guarda un valor.\n" + StateDelimiter + "esto no es json"

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, "Una variable guarda un valor.", result.Response)
	assert.Equal(t, "t-1", result.CurrentTopicID)
	assert.False(t, result.SummaryRequested)

	// The fallback keeps the current topic in progress and nothing else.
	require.Len(t, f.repo.writes, 1)
	assert.Equal(t, statusWrite{TopicID: "t-1", Status: syllabus.StatusInProgress}, f.repo.writes[0])

	// The display half is still delivered and persisted.
	require.Len(t, f.chats.appended, 2)
	assert.Equal(t, "Una variable guarda un valor.", f.chats.appended[1].Content)
}

func TestHandleStudentMessage_MissingDelimiterUsesFallback(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = "Respuesta sin bloque de estado."

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.Equal(t, "Respuesta sin bloque de estado.", result.Response)
	require.Len(t, f.repo.writes, 1)
	assert.Equal(t, syllabus.StatusInProgress, f.repo.writes[0].Status)
}

func TestHandleStudentMessage_NotEnrolled(t *testing.T) {
	f := newOrchestratorFixture(nil)

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	assert.Nil(t, result)
	assert.True(t, shared.IsNotFound(err))
	assert.Zero(t, f.model.calls)
}

func TestHandleStudentMessage_CourseCompletion(t *testing.T) {
	state := threeTopicState()
	require.NoError(t, state.SetTopicStatus("t-1", syllabus.StatusCompleted))
	require.NoError(t, state.SetTopicStatus("t-2", syllabus.StatusCompleted))
	require.NoError(t, state.SetTopicStatus("t-3", syllabus.StatusInProgress))
	state.CurrentTopicID = "t-3"

	f := newOrchestratorFixture(state)
	f.model.reply = "¡Has terminado el curso!\n" + StateDelimiter +
		`{"trigger_summary_generation": true, "current_topic_id": "t-3", "topics_updated": [{"topic_id": "t-3", "status": "completed"}]}`

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "listo")

	require.NoError(t, err)
	assert.True(t, result.CourseCompleted)
	assert.True(t, result.SummaryRequested)
	assert.Contains(t, f.bus.typesPublished(), shared.EventCourseCompleted)
}

func TestInitializeSession_OnlyGreetingEntersHistory(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.model.reply = "¡Bienvenido! Hoy empezamos con las variables.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	result, err := f.orch.InitializeSession(context.Background(), "student-1", "course-1")

	require.NoError(t, err)
	assert.Equal(t, "¡Bienvenido! Hoy empezamos con las variables.", result.Response)

	// The sentinel never enters the transcript; only the tutor's greeting.
	require.Len(t, f.chats.appended, 1)
	assert.Equal(t, chat.RoleAssistant, f.chats.appended[0].Role)

	// And the sentinel is what the model saw as input.
	require.Len(t, f.model.prompts, 1)
	assert.Contains(t, f.model.prompts[0], SessionInitSentinel)
}

func TestHandleStudentMessage_HistoryFailureDoesNotBlockTurn(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.chats.getErr = errBoom
	f.model.reply = "Seguimos.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.Equal(t, "Seguimos.", result.Response)
	require.Len(t, f.model.prompts, 1)
	assert.Contains(t, f.model.prompts[0], "[Sin mensajes previos]")
}

func TestHandleStudentMessage_CacheReadThrough(t *testing.T) {
	state := threeTopicState()
	f := newOrchestratorFixture(nil)
	f.cache.state = state
	f.model.reply = "Hola.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	// The repository holds nothing; the turn must be served from cache.
	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.Equal(t, "t-1", result.CurrentTopicID)
}

func TestHandleStudentMessage_PersonaFailureFallsBackToDefault(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	courses := &fakeCourseRepo{personaErr: errBoom}
	reconciler := NewReconciler(f.repo, f.cache, f.bus, nil)
	orch := NewOrchestrator(f.repo, f.cache, courses, f.chats, f.model, reconciler, f.bus, nil)
	f.model.reply = "Hola.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	_, err := orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	require.Len(t, f.model.prompts, 1)
	assert.Contains(t, f.model.prompts[0], "cercano y motivador")
}

func TestHandleStudentMessage_ChatWriteFailureStillResponds(t *testing.T) {
	f := newOrchestratorFixture(threeTopicState())
	f.chats.appendErr = errBoom
	f.model.reply = "Hola.\n" + StateDelimiter +
		`{"trigger_summary_generation": false, "current_topic_id": "t-1", "topics_updated": [{"topic_id": "t-1", "status": "in_progress"}]}`

	result, err := f.orch.HandleStudentMessage(context.Background(), "student-1", "course-1", "hola")

	require.NoError(t, err)
	assert.Equal(t, "Hola.", result.Response)
	assert.False(t, result.Degraded)
}
