package tutor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitResponse_DelimiterPresent(t *testing.T) {
	raw := "¡Muy bien! Pasemos al siguiente tema.\n" + StateDelimiter + "\n{\"trigger_summary_generation\": false}"

	display, delta := SplitResponse(raw)

	assert.Equal(t, "¡Muy bien! Pasemos al siguiente tema.", display)
	assert.Equal(t, `{"trigger_summary_generation": false}`, delta)
}

func TestSplitResponse_DelimiterAbsent(t *testing.T) {
	display, delta := SplitResponse("  Hola, ¿seguimos con las variables?  ")

	assert.Equal(t, "Hola, ¿seguimos con las variables?", display)
	assert.Empty(t, delta)
}

func TestSplitResponse_OnlySplitsOnFirstDelimiter(t *testing.T) {
	raw := "respuesta" + StateDelimiter + `{"a":1}` + StateDelimiter + `{"b":2}`

	display, delta := SplitResponse(raw)

	assert.Equal(t, "respuesta", display)
	assert.Contains(t, delta, `{"a":1}`)
	assert.Contains(t, delta, `{"b":2}`)
}

func TestSplitResponse_StripsJSONCodeFences(t *testing.T) {
	raw := "texto visible\n" + StateDelimiter + "\n```json\n{\"current_topic_id\": \"t-1\"}\n```"

	_, delta := SplitResponse(raw)

	assert.Equal(t, `{"current_topic_id": "t-1"}`, delta)
}

func TestSplitResponse_EmptyInput(t *testing.T) {
	display, delta := SplitResponse("")

	assert.Empty(t, display)
	assert.Empty(t, delta)
}

func TestSplitResponse_DelimiterWithEmptyDelta(t *testing.T) {
	display, delta := SplitResponse("solo texto\n" + StateDelimiter + "\n   ")

	assert.Equal(t, "solo texto", display)
	assert.Empty(t, delta)
}
