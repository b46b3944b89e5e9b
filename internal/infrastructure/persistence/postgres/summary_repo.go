// Package postgres implements the PostgreSQL persistence layer for the
// tutoring engine.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/summary"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SummaryRepository implements summary.Repository for PostgreSQL.
type SummaryRepository struct {
	conn *Connection
}

// NewSummaryRepository creates a new SummaryRepository.
func NewSummaryRepository(conn *Connection) *SummaryRepository {
	return &SummaryRepository{conn: conn}
}

// Save stores the closing summary of a topic. The unique constraint on
// (student_id, topic_id) makes concurrent archivist runs lose cleanly.
func (r *SummaryRepository) Save(ctx context.Context, s *summary.TopicSummary) error {
	if err := s.Validate(); err != nil {
		return err
	}

	doubtsJSON, err := json.Marshal(s.Notes.StudentDoubts)
	if err != nil {
		return fmt.Errorf("failed to marshal student doubts: %w", err)
	}

	query := `
		INSERT INTO topic_summaries (
			id, student_id, topic_id, completion_summary, student_doubts,
			effective_analogies, engagement_level, next_session_hook, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.conn.Exec(ctx, query,
		s.ID,
		s.StudentID,
		s.TopicID,
		s.CompletionSummary,
		doubtsJSON,
		s.Notes.EffectiveAnalogies,
		string(s.Notes.EngagementLevel),
		s.NextSessionHook,
		s.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSummaryAlreadyExists
		}
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return nil
}

// GetByStudentAndTopic returns the summary of a single topic.
func (r *SummaryRepository) GetByStudentAndTopic(ctx context.Context, studentID, topicID string) (*summary.TopicSummary, error) {
	query := `
		SELECT id, student_id, topic_id, completion_summary, student_doubts,
			   effective_analogies, engagement_level, next_session_hook, created_at
		FROM topic_summaries
		WHERE student_id = $1 AND topic_id = $2
	`

	row := r.conn.QueryRow(ctx, query, studentID, topicID)
	s, err := scanSummary(row)
	if IsNoRows(err) {
		return nil, shared.ErrSummaryNotFound
	}
	return s, err
}

// GetByStudent returns all summaries of a student in chronological order.
func (r *SummaryRepository) GetByStudent(ctx context.Context, studentID string) ([]*summary.TopicSummary, error) {
	query := `
		SELECT id, student_id, topic_id, completion_summary, student_doubts,
			   effective_analogies, engagement_level, next_session_hook, created_at
		FROM topic_summaries
		WHERE student_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*summary.TopicSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Exists checks if the topic already has a summary.
func (r *SummaryRepository) Exists(ctx context.Context, studentID, topicID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM topic_summaries WHERE student_id = $1 AND topic_id = $2)",
		studentID,
		topicID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check summary existence: %w", err)
	}
	return exists, nil
}

// scanSummary scans a summary from a row.
func scanSummary(row pgx.Row) (*summary.TopicSummary, error) {
	var s summary.TopicSummary
	var doubtsJSON []byte
	var engagement string

	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.TopicID,
		&s.CompletionSummary,
		&doubtsJSON,
		&s.Notes.EffectiveAnalogies,
		&engagement,
		&s.NextSessionHook,
		&s.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan summary: %w", err)
	}

	s.Notes.EngagementLevel = summary.EngagementLevel(engagement)
	if len(doubtsJSON) > 0 {
		_ = json.Unmarshal(doubtsJSON, &s.Notes.StudentDoubts)
	}

	return &s, nil
}
