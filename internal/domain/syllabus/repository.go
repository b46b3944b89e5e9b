package syllabus

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Estos interfaces definen el contrato de persistencia del temario.
// Las implementaciones viven en infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository define las operaciones de persistencia del temario personal.
type Repository interface {
	// Create crea el temario completo de un estudiante (una fila por tema).
	// Devuelve ErrSyllabusAlreadyExists si ya existe una matrícula.
	Create(ctx context.Context, state *State) error

	// GetByStudentAndCourse devuelve el temario del estudiante en el curso,
	// con los temas ordenados por OrderIndex ascendente.
	// Devuelve ErrSyllabusNotFound si no hay matrícula.
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*State, error)

	// SetTopicStatus actualiza el estado de un único tema.
	// Devuelve ErrTopicNotInSyllabus si el tema no pertenece al temario.
	SetTopicStatus(ctx context.Context, studentID, courseID, topicID string, status TopicStatus) error

	// Exists comprueba si el estudiante está matriculado en el curso.
	Exists(ctx context.Context, studentID, courseID string) (bool, error)

	// DeleteForStudent elimina el temario completo del estudiante en el
	// curso. El borrado en cascada del historial y los resúmenes lo
	// resuelven las claves foráneas del esquema.
	DeleteForStudent(ctx context.Context, studentID, courseID string) error
}

// Cache define la caché de lectura del temario.
type Cache interface {
	// Get devuelve el temario cacheado, o ErrSyllabusNotFound si no está.
	Get(ctx context.Context, studentID, courseID string) (*State, error)

	// Set guarda el temario en la caché con el TTL indicado.
	Set(ctx context.Context, state *State, ttl time.Duration) error

	// Invalidate elimina el temario de la caché tras una escritura.
	Invalidate(ctx context.Context, studentID, courseID string) error
}
