// Package syllabus contiene el modelo de dominio del temario personal del
// estudiante. Es el núcleo de la lógica de negocio - no tiene dependencias externas.
package syllabus

import (
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// TopicStatus define el estado de un tema dentro del temario del estudiante.
type TopicStatus string

const (
	// StatusPending - el tema todavía no se ha empezado.
	StatusPending TopicStatus = "pending"
	// StatusInProgress - el tema se está estudiando actualmente.
	StatusInProgress TopicStatus = "in_progress"
	// StatusCompleted - el tutor dio el tema por dominado.
	StatusCompleted TopicStatus = "completed"
)

// IsValid comprueba que el estado sea uno de los tres permitidos.
func (s TopicStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// String devuelve la representación textual del estado.
func (s TopicStatus) String() string {
	return string(s)
}

// CanTransitionTo comprueba si la transición de estado está permitida.
// Un tema nunca pasa de pending a completed sin estar antes in_progress,
// y un tema completado no se reabre.
func (s TopicStatus) CanTransitionTo(target TopicStatus) bool {
	if s == target {
		return true
	}
	switch s {
	case StatusPending:
		return target == StatusInProgress
	case StatusInProgress:
		return target == StatusCompleted
	default:
		return false
	}
}

// ParseTopicStatus convierte una cadena en TopicStatus con validación.
func ParseTopicStatus(raw string) (TopicStatus, error) {
	s := TopicStatus(raw)
	if !s.IsValid() {
		return "", shared.ErrInvalidTopicStatus
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTIDAD PRINCIPAL: SYLLABUS
// ══════════════════════════════════════════════════════════════════════════════

// TopicState representa el estado de un tema concreto en el temario.
type TopicState struct {
	// TopicID - identificador del tema en el catálogo del curso.
	TopicID string

	// Title - título del tema, copiado del catálogo al matricularse.
	Title string

	// Status - estado actual del tema.
	Status TopicStatus

	// OrderIndex - posición del tema en el curso. Única por temario,
	// asignada al matricularse y nunca reutilizada.
	OrderIndex int

	// UpdatedAt - última modificación del estado.
	UpdatedAt time.Time
}

// State representa el temario completo de un estudiante en un curso.
// Los temas están ordenados por OrderIndex ascendente.
type State struct {
	// StudentID - identificador del estudiante.
	StudentID string

	// CourseID - identificador del curso.
	CourseID string

	// CurrentTopicID - tema sobre el que gira la conversación actual.
	CurrentTopicID string

	// Topics - temas del curso ordenados por OrderIndex.
	Topics []TopicState

	// CreatedAt - momento de la matrícula.
	CreatedAt time.Time
}

// NewStateParams contiene los parámetros para crear un temario nuevo.
type NewStateParams struct {
	StudentID string
	CourseID  string
	Topics    []TopicState
}

// NewState crea el temario de un estudiante recién matriculado: el primer
// tema queda in_progress y el resto pending.
func NewState(params NewStateParams) (*State, error) {
	if params.StudentID == "" || params.CourseID == "" {
		return nil, shared.NewDomainError("syllabus", "NewState", shared.ErrEmptyValue, "student and course IDs are required")
	}
	if len(params.Topics) == 0 {
		return nil, shared.ErrCourseHasNoTopics
	}

	topics := make([]TopicState, len(params.Topics))
	copy(topics, params.Topics)
	now := time.Now()
	for i := range topics {
		topics[i].OrderIndex = i
		topics[i].Status = StatusPending
		topics[i].UpdatedAt = now
	}
	topics[0].Status = StatusInProgress

	return &State{
		StudentID:      params.StudentID,
		CourseID:       params.CourseID,
		CurrentTopicID: topics[0].TopicID,
		Topics:         topics,
		CreatedAt:      now,
	}, nil
}

// TopicByID busca un tema por su identificador.
func (s *State) TopicByID(topicID string) (*TopicState, bool) {
	for i := range s.Topics {
		if s.Topics[i].TopicID == topicID {
			return &s.Topics[i], true
		}
	}
	return nil, false
}

// CurrentTopic devuelve el tema actual de la conversación.
func (s *State) CurrentTopic() (*TopicState, bool) {
	if s.CurrentTopicID != "" {
		if t, ok := s.TopicByID(s.CurrentTopicID); ok {
			return t, true
		}
	}
	// Si el puntero está desfasado, el tema in_progress manda.
	return s.InProgressTopic()
}

// InProgressTopic devuelve el tema marcado como in_progress, si existe.
func (s *State) InProgressTopic() (*TopicState, bool) {
	for i := range s.Topics {
		if s.Topics[i].Status == StatusInProgress {
			return &s.Topics[i], true
		}
	}
	return nil, false
}

// HasInProgress indica si algún tema está in_progress.
func (s *State) HasInProgress() bool {
	_, ok := s.InProgressTopic()
	return ok
}

// TopicByOrderIndex busca el tema con el índice exacto dado. Es la base de
// la reparación: el sucesor de un tema completado es siempre OrderIndex+1,
// independientemente de su estado, para que reaplicar el mismo delta dos
// veces no avance el temario dos posiciones.
func (s *State) TopicByOrderIndex(orderIndex int) (*TopicState, bool) {
	for i := range s.Topics {
		if s.Topics[i].OrderIndex == orderIndex {
			return &s.Topics[i], true
		}
	}
	return nil, false
}

// SetTopicStatus cambia el estado de un tema en memoria.
// Devuelve ErrTopicNotInSyllabus si el tema no pertenece al temario.
func (s *State) SetTopicStatus(topicID string, status TopicStatus) error {
	if !status.IsValid() {
		return shared.ErrInvalidTopicStatus
	}
	t, ok := s.TopicByID(topicID)
	if !ok {
		return shared.ErrTopicNotInSyllabus
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

// CompletedCount devuelve el número de temas completados.
func (s *State) CompletedCount() int {
	count := 0
	for i := range s.Topics {
		if s.Topics[i].Status == StatusCompleted {
			count++
		}
	}
	return count
}

// CompletionPercent devuelve el porcentaje de temas completados (0-100).
func (s *State) CompletionPercent() int {
	if len(s.Topics) == 0 {
		return 0
	}
	return (s.CompletedCount() * 100) / len(s.Topics)
}

// IsComplete indica si todos los temas están completados.
func (s *State) IsComplete() bool {
	return len(s.Topics) > 0 && s.CompletedCount() == len(s.Topics)
}
