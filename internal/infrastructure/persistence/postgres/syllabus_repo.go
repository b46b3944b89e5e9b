// Package postgres implements the PostgreSQL persistence layer for the
// tutoring engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYLLABUS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SyllabusRepository implements syllabus.Repository for PostgreSQL.
type SyllabusRepository struct {
	conn *Connection
}

// NewSyllabusRepository creates a new SyllabusRepository.
func NewSyllabusRepository(conn *Connection) *SyllabusRepository {
	return &SyllabusRepository{conn: conn}
}

// Create inserts the full syllabus of a student in one transaction.
func (r *SyllabusRepository) Create(ctx context.Context, state *syllabus.State) error {
	query := `
		INSERT INTO syllabus_topics (
			student_id, course_id, topic_id, title, status, order_index,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		for _, t := range state.Topics {
			_, err := tx.Exec(ctx, query,
				state.StudentID,
				state.CourseID,
				t.TopicID,
				t.Title,
				string(t.Status),
				t.OrderIndex,
				state.CreatedAt,
				t.UpdatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSyllabusAlreadyExists
		}
		return fmt.Errorf("failed to create syllabus: %w", err)
	}

	return nil
}

// GetByStudentAndCourse returns the student's syllabus with topics ordered
// by order_index ascending.
func (r *SyllabusRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	query := `
		SELECT topic_id, title, status, order_index, created_at, updated_at
		FROM syllabus_topics
		WHERE student_id = $1 AND course_id = $2
		ORDER BY order_index ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query syllabus: %w", err)
	}
	defer rows.Close()

	state := &syllabus.State{
		StudentID: studentID,
		CourseID:  courseID,
	}

	for rows.Next() {
		var t syllabus.TopicState
		var status string
		var createdAt time.Time

		if err := rows.Scan(&t.TopicID, &t.Title, &status, &t.OrderIndex, &createdAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan syllabus topic: %w", err)
		}

		t.Status = syllabus.TopicStatus(status)
		if state.CreatedAt.IsZero() || createdAt.Before(state.CreatedAt) {
			state.CreatedAt = createdAt
		}
		if t.Status == syllabus.StatusInProgress {
			state.CurrentTopicID = t.TopicID
		}
		state.Topics = append(state.Topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(state.Topics) == 0 {
		return nil, shared.ErrSyllabusNotFound
	}

	return state, nil
}

// SetTopicStatus updates the status of a single topic row.
func (r *SyllabusRepository) SetTopicStatus(ctx context.Context, studentID, courseID, topicID string, status syllabus.TopicStatus) error {
	if !status.IsValid() {
		return shared.ErrInvalidTopicStatus
	}

	query := `
		UPDATE syllabus_topics
		SET status = $1, updated_at = $2
		WHERE student_id = $3 AND course_id = $4 AND topic_id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		string(status),
		time.Now().UTC(),
		studentID,
		courseID,
		topicID,
	)
	if err != nil {
		return fmt.Errorf("failed to update topic status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrTopicNotInSyllabus
	}

	return nil
}

// Exists checks if the student is enrolled in the course.
func (r *SyllabusRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM syllabus_topics WHERE student_id = $1 AND course_id = $2)",
		studentID,
		courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check syllabus existence: %w", err)
	}
	return exists, nil
}

// DeleteForStudent removes the student's syllabus for a course. Chat history
// and summaries follow through the schema's cascade rules.
func (r *SyllabusRepository) DeleteForStudent(ctx context.Context, studentID, courseID string) error {
	result, err := r.conn.Exec(ctx,
		"DELETE FROM syllabus_topics WHERE student_id = $1 AND course_id = $2",
		studentID,
		courseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete syllabus: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrSyllabusNotFound
	}

	return nil
}
