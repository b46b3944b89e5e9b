// Package summary contiene el acta pedagógica que el archivista redacta al
// cerrar un tema: qué se aprendió, qué dudas quedaron y cómo retomar la
// siguiente sesión.
package summary

import (
	"strings"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// EngagementLevel clasifica la implicación del estudiante durante el tema.
type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "High"
	EngagementMedium EngagementLevel = "Medium"
	EngagementLow    EngagementLevel = "Low"
)

// IsValid comprueba que el nivel sea uno de los tres permitidos.
func (e EngagementLevel) IsValid() bool {
	switch e {
	case EngagementHigh, EngagementMedium, EngagementLow:
		return true
	default:
		return false
	}
}

// ParseEngagementLevel normaliza y valida el nivel de implicación que
// devuelve el modelo. Acepta variaciones de mayúsculas.
func ParseEngagementLevel(raw string) (EngagementLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return EngagementHigh, nil
	case "medium":
		return EngagementMedium, nil
	case "low":
		return EngagementLow, nil
	default:
		return "", shared.ErrInvalidEngagementLevel
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTIDAD: TOPIC SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// PedagogicalNotes recoge las observaciones didácticas del archivista.
type PedagogicalNotes struct {
	// StudentDoubts - dudas que el estudiante manifestó durante el tema.
	StudentDoubts []string

	// EffectiveAnalogies - analogías que funcionaron bien con este estudiante.
	EffectiveAnalogies string

	// EngagementLevel - implicación observada durante el tema.
	EngagementLevel EngagementLevel
}

// TopicSummary es el acta de cierre de un tema. Se escribe una sola vez por
// (estudiante, tema) y no se modifica después.
type TopicSummary struct {
	// ID - identificador único del acta (UUID).
	ID string

	// StudentID - estudiante al que pertenece.
	StudentID string

	// TopicID - tema que se cierra.
	TopicID string

	// CompletionSummary - resumen de lo aprendido.
	CompletionSummary string

	// Notes - observaciones pedagógicas.
	Notes PedagogicalNotes

	// NextSessionHook - frase con la que retomar la siguiente sesión.
	NextSessionHook string

	// CreatedAt - momento en que se redactó el acta.
	CreatedAt time.Time
}

// Validate comprueba que el acta sea persistible.
func (s *TopicSummary) Validate() error {
	if s.StudentID == "" || s.TopicID == "" {
		return shared.NewDomainError("summary", "Validate", shared.ErrEmptyValue, "student and topic IDs are required")
	}
	if strings.TrimSpace(s.CompletionSummary) == "" {
		return shared.NewDomainError("summary", "Validate", shared.ErrEmptyValue, "completion summary cannot be empty")
	}
	if !s.Notes.EngagementLevel.IsValid() {
		return shared.ErrInvalidEngagementLevel
	}
	return nil
}
