// Package postgres implements the PostgreSQL persistence layer for the
// tutoring engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
// The catalog is read-only from this service's point of view.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// GetByID returns a course with its topics ordered by order_index.
func (r *CourseRepository) GetByID(ctx context.Context, courseID string) (*course.Course, error) {
	query := `
		SELECT id, title, description, created_at
		FROM courses
		WHERE id = $1
	`

	var c course.Course
	err := r.conn.QueryRow(ctx, query, courseID).Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt)
	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	topics, err := r.GetTopics(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.Topics = topics

	return &c, nil
}

// GetTopics returns the topics of a course ordered by order_index.
func (r *CourseRepository) GetTopics(ctx context.Context, courseID string) ([]course.Topic, error) {
	query := `
		SELECT id, course_id, title, content, order_index
		FROM course_topics
		WHERE course_id = $1
		ORDER BY order_index ASC
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course topics: %w", err)
	}
	defer rows.Close()

	return scanTopics(rows)
}

// GetTopic returns a single catalog topic.
func (r *CourseRepository) GetTopic(ctx context.Context, topicID string) (*course.Topic, error) {
	query := `
		SELECT id, course_id, title, content, order_index
		FROM course_topics
		WHERE id = $1
	`

	var t course.Topic
	err := r.conn.QueryRow(ctx, query, topicID).Scan(&t.ID, &t.CourseID, &t.Title, &t.Content, &t.OrderIndex)
	if IsNoRows(err) {
		return nil, shared.ErrTopicNotInSyllabus
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	return &t, nil
}

// GetPersona returns the course's teaching persona. Courses without a
// configured persona get the default one without error.
func (r *CourseRepository) GetPersona(ctx context.Context, courseID string) (course.PersonaConfig, error) {
	query := `
		SELECT tone, explanation_style, language, difficulty_level
		FROM persona_configs
		WHERE course_id = $1
	`

	var p course.PersonaConfig
	err := r.conn.QueryRow(ctx, query, courseID).Scan(&p.Tone, &p.ExplanationStyle, &p.Language, &p.DifficultyLevel)
	if IsNoRows(err) {
		return course.DefaultPersonaConfig(), nil
	}
	if err != nil {
		return course.PersonaConfig{}, fmt.Errorf("failed to get persona: %w", err)
	}

	return p, nil
}

// List returns the published courses without their topics.
func (r *CourseRepository) List(ctx context.Context) ([]*course.Course, error) {
	query := `
		SELECT id, title, description, created_at
		FROM courses
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		var c course.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, &c)
	}

	return courses, rows.Err()
}

// scanTopics scans catalog topics from rows.
func scanTopics(rows pgx.Rows) ([]course.Topic, error) {
	var topics []course.Topic
	for rows.Next() {
		var t course.Topic
		if err := rows.Scan(&t.ID, &t.CourseID, &t.Title, &t.Content, &t.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
