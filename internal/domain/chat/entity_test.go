package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

func TestMessage_Validate(t *testing.T) {
	valid := &Message{Role: RoleUser, Content: "hola"}
	assert.NoError(t, valid.Validate())

	empty := &Message{Role: RoleAssistant, Content: "   "}
	assert.ErrorIs(t, empty.Validate(), shared.ErrEmptyMessage)

	badRole := &Message{Role: Role("system"), Content: "hola"}
	assert.ErrorIs(t, badRole.Validate(), shared.ErrInvalidChatRole)
}

func TestRenderTranscript(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "¿Qué es una variable?"},
		{Role: RoleAssistant, Content: "Es como una caja etiquetada."},
		{Role: RoleUser, Content: "¡Ah, ya lo entiendo!"},
	}

	transcript := RenderTranscript(messages)

	expected := "USER: ¿Qué es una variable?\n\n" +
		"ASSISTANT: Es como una caja etiquetada.\n\n" +
		"USER: ¡Ah, ya lo entiendo!"
	assert.Equal(t, expected, transcript)
}

func TestRenderTranscript_Empty(t *testing.T) {
	assert.Empty(t, RenderTranscript(nil))
	assert.Empty(t, RenderTranscript([]Message{}))
}
