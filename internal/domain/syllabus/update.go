package syllabus

// ══════════════════════════════════════════════════════════════════════════════
// STATE UPDATE
// El delta de estado que el modelo emite en cada turno. Es un valor efímero:
// se valida, se aplica contra el temario persistido y se descarta. Nunca se
// guarda tal cual.
// ══════════════════════════════════════════════════════════════════════════════

// TopicChange representa un cambio de estado propuesto para un tema.
type TopicChange struct {
	TopicID string      `json:"topic_id"`
	Status  TopicStatus `json:"status"`
}

// StateUpdate es el delta estructurado que acompaña a cada respuesta del
// tutor. CurrentTopicID indica el tema sobre el que el modelo cree estar
// hablando; TopicsUpdated enumera los cambios propuestos.
type StateUpdate struct {
	TriggerSummaryGeneration bool          `json:"trigger_summary_generation"`
	CurrentTopicID           string        `json:"current_topic_id"`
	TopicsUpdated            []TopicChange `json:"topics_updated"`
}

// IsNoOp indica si el delta no propone ningún cambio de estado real: ningún
// tema completado y sin petición de resumen.
func (u StateUpdate) IsNoOp() bool {
	if u.TriggerSummaryGeneration {
		return false
	}
	for _, change := range u.TopicsUpdated {
		if change.Status == StatusCompleted {
			return false
		}
	}
	return true
}

// CompletedTopics devuelve los IDs de los temas que el delta marca como
// completados, en el orden en que aparecen.
func (u StateUpdate) CompletedTopics() []string {
	var ids []string
	for _, change := range u.TopicsUpdated {
		if change.Status == StatusCompleted {
			ids = append(ids, change.TopicID)
		}
	}
	return ids
}

// LeavesInProgress indica si, tras aplicar el delta, algún tema del temario
// quedaría in_progress. Se evalúa sobre la intención del delta combinada con
// el estado actual del temario.
func (u StateUpdate) LeavesInProgress(state *State) bool {
	proposed := make(map[string]TopicStatus, len(u.TopicsUpdated))
	for _, change := range u.TopicsUpdated {
		proposed[change.TopicID] = change.Status
	}
	for i := range state.Topics {
		t := &state.Topics[i]
		status := t.Status
		if p, ok := proposed[t.TopicID]; ok {
			status = p
		}
		if status == StatusInProgress {
			return true
		}
	}
	return false
}
