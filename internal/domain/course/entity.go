// Package course contiene el catálogo de cursos y la configuración de la
// persona docente. Es material de solo lectura para el motor de tutoría.
package course

import (
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTIDADES DEL CATÁLOGO
// ══════════════════════════════════════════════════════════════════════════════

// Topic representa un tema del catálogo de un curso.
type Topic struct {
	// ID - identificador único del tema.
	ID string

	// CourseID - curso al que pertenece.
	CourseID string

	// Title - título del tema tal como se muestra al estudiante.
	Title string

	// Content - material de referencia que se inyecta en el prompt.
	Content string

	// OrderIndex - posición del tema dentro del curso.
	OrderIndex int
}

// Course representa un curso publicado en el catálogo.
type Course struct {
	// ID - identificador único del curso.
	ID string

	// Title - título del curso.
	Title string

	// Description - descripción corta para el listado.
	Description string

	// Topics - temas ordenados por OrderIndex.
	Topics []Topic

	// CreatedAt - fecha de publicación.
	CreatedAt time.Time
}

// TopicCount devuelve el número de temas del curso.
func (c *Course) TopicCount() int {
	return len(c.Topics)
}

// Validate comprueba que el curso sea utilizable para matricular.
func (c *Course) Validate() error {
	if c.ID == "" {
		return shared.NewDomainError("course", "Validate", shared.ErrInvalidID, "course ID is required")
	}
	if len(c.Topics) == 0 {
		return shared.ErrCourseHasNoTopics
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PERSONA DOCENTE
// ══════════════════════════════════════════════════════════════════════════════

// PersonaConfig define el carácter del tutor para un curso: tono, estilo de
// explicación, idioma y nivel de dificultad. Se serializa tal cual dentro
// del prompt del tutor.
type PersonaConfig struct {
	Tone             string `json:"tone"`
	ExplanationStyle string `json:"explanation_style"`
	Language         string `json:"language"`
	DifficultyLevel  string `json:"difficulty_level"`
}

// DefaultPersonaConfig devuelve la persona que se usa cuando el curso no
// tiene una configurada.
func DefaultPersonaConfig() PersonaConfig {
	return PersonaConfig{
		Tone:             "cercano y motivador",
		ExplanationStyle: "analogías de la vida cotidiana",
		Language:         "es",
		DifficultyLevel:  "principiante",
	}
}
