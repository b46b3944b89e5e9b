package query

import (
	"context"
	"fmt"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COURSES QUERY
// Catálogo de cursos disponibles para matrícula.
// ══════════════════════════════════════════════════════════════════════════════

// ListCoursesQuery contiene los parámetros de la consulta de catálogo.
type ListCoursesQuery struct {
	// Limit - máximo de cursos a devolver (0 = sin límite).
	Limit int
}

// CourseDTO - curso del catálogo para la vista.
type CourseDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListCoursesHandler handles the ListCoursesQuery.
type ListCoursesHandler struct {
	courseRepo course.Repository
}

// NewListCoursesHandler creates a new ListCoursesHandler.
func NewListCoursesHandler(courseRepo course.Repository) *ListCoursesHandler {
	return &ListCoursesHandler{courseRepo: courseRepo}
}

// Handle executes the catalog query.
func (h *ListCoursesHandler) Handle(ctx context.Context, q ListCoursesQuery) ([]CourseDTO, error) {
	courses, err := h.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_courses: %w", err)
	}

	if q.Limit > 0 && len(courses) > q.Limit {
		courses = courses[:q.Limit]
	}

	dtos := make([]CourseDTO, 0, len(courses))
	for _, c := range courses {
		dtos = append(dtos, CourseDTO{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}
	return dtos, nil
}
