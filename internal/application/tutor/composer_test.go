package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/course"
)

func TestComposeTeacherPrompt_FillsAllPlaceholders(t *testing.T) {
	state := threeTopicState()
	persona := course.DefaultPersonaConfig()
	history := []chat.Message{
		{Role: chat.RoleUser, Content: "¿Qué es una variable?"},
		{Role: chat.RoleAssistant, Content: "Una variable es como una caja."},
	}

	prompt, err := ComposeTeacherPrompt(persona, state, history, "creo que lo entendí")

	require.NoError(t, err)
	assert.NotContains(t, prompt, "{{")
	assert.NotContains(t, prompt, "}}")
	assert.Contains(t, prompt, `"tone":"cercano y motivador"`)
	assert.Contains(t, prompt, `"current_topic_id":"t-1"`)
	assert.Contains(t, prompt, `"topic_id":"t-3"`)
	assert.Contains(t, prompt, "USER: ¿Qué es una variable?")
	assert.Contains(t, prompt, "ASSISTANT: Una variable es como una caja.")
	assert.Contains(t, prompt, "creo que lo entendí")
	assert.Contains(t, prompt, StateDelimiter)
}

func TestComposeTeacherPrompt_Deterministic(t *testing.T) {
	state := threeTopicState()
	persona := course.DefaultPersonaConfig()

	first, err := ComposeTeacherPrompt(persona, state, nil, "hola")
	require.NoError(t, err)
	second, err := ComposeTeacherPrompt(persona, state, nil, "hola")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComposeTeacherPrompt_EmptyHistoryMarker(t *testing.T) {
	state := threeTopicState()

	prompt, err := ComposeTeacherPrompt(course.DefaultPersonaConfig(), state, nil, SessionInitSentinel)

	require.NoError(t, err)
	assert.Contains(t, prompt, "[Sin mensajes previos]")
	assert.Contains(t, prompt, SessionInitSentinel)
}

func TestComposeTeacherPrompt_ResolvesStaleCurrentPointer(t *testing.T) {
	state := threeTopicState()
	state.CurrentTopicID = "t-404"

	prompt, err := ComposeTeacherPrompt(course.DefaultPersonaConfig(), state, nil, "hola")

	require.NoError(t, err)
	assert.Contains(t, prompt, `"current_topic_id":"t-1"`)
	assert.NotContains(t, prompt, "t-404")
}

func TestComposeNotaryPrompt(t *testing.T) {
	transcript := "USER: hola\n\nASSISTANT: bienvenido"

	prompt := ComposeNotaryPrompt(transcript)

	assert.NotContains(t, prompt, "{{")
	assert.Contains(t, prompt, transcript)
	assert.Contains(t, prompt, "topic_completion_summary")
}

func TestPromptTemplates_FencesRewritten(t *testing.T) {
	// Raw literals write fences as ''' so templates can live in backtick
	// strings; the rewrite must leave real markdown fences behind.
	assert.NotContains(t, teacherPromptTemplate, "'''")
	assert.Contains(t, teacherPromptTemplate, "```python")
	assert.NotContains(t, notaryPromptTemplate, "'''")
}
