package summary

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository define las operaciones de persistencia de las actas de tema.
type Repository interface {
	// Save guarda el acta de cierre de un tema.
	// Devuelve ErrSummaryAlreadyExists si el tema ya tiene acta.
	Save(ctx context.Context, summary *TopicSummary) error

	// GetByStudentAndTopic devuelve el acta de un tema concreto.
	// Devuelve ErrSummaryNotFound si no existe.
	GetByStudentAndTopic(ctx context.Context, studentID, topicID string) (*TopicSummary, error)

	// GetByStudent devuelve todas las actas del estudiante en orden
	// cronológico ascendente.
	GetByStudent(ctx context.Context, studentID string) ([]*TopicSummary, error)

	// Exists comprueba si el tema ya tiene acta.
	Exists(ctx context.Context, studentID, topicID string) (bool, error)
}
