package course

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository define las operaciones de lectura del catálogo de cursos.
// El catálogo se administra fuera de este servicio; aquí solo se lee.
type Repository interface {
	// GetByID devuelve el curso con sus temas ordenados por OrderIndex.
	// Devuelve ErrCourseNotFound si el curso no existe.
	GetByID(ctx context.Context, courseID string) (*Course, error)

	// GetTopics devuelve los temas del curso ordenados por OrderIndex.
	GetTopics(ctx context.Context, courseID string) ([]Topic, error)

	// GetTopic devuelve un tema concreto del catálogo.
	GetTopic(ctx context.Context, topicID string) (*Topic, error)

	// GetPersona devuelve la persona docente del curso. Si el curso no
	// tiene persona configurada, devuelve la persona por defecto sin error.
	GetPersona(ctx context.Context, courseID string) (PersonaConfig, error)

	// List devuelve los cursos publicados.
	List(ctx context.Context) ([]*Course, error)
}
