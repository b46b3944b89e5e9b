package chat

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository define las operaciones del historial de conversación.
type Repository interface {
	// Append añade un mensaje al final del historial del tema.
	Append(ctx context.Context, message *Message) error

	// GetByStudentAndTopic devuelve el historial completo del tema en
	// orden cronológico ascendente.
	GetByStudentAndTopic(ctx context.Context, studentID, topicID string) ([]Message, error)

	// GetRecent devuelve los últimos N mensajes del tema en orden
	// cronológico ascendente. Se usa para acotar el contexto del prompt.
	GetRecent(ctx context.Context, studentID, topicID string, limit int) ([]Message, error)

	// CountByTopic devuelve el número de mensajes del tema.
	CountByTopic(ctx context.Context, studentID, topicID string) (int, error)
}
