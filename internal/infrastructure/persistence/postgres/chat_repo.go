// Package postgres implements the PostgreSQL persistence layer for the
// tutoring engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHAT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ChatRepository implements chat.Repository for PostgreSQL.
// The history is append-only; there are no update or delete operations.
type ChatRepository struct {
	conn *Connection
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(conn *Connection) *ChatRepository {
	return &ChatRepository{conn: conn}
}

// Append adds a message to the end of the topic's history.
func (r *ChatRepository) Append(ctx context.Context, message *chat.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO chat_messages (id, student_id, topic_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		message.ID,
		message.StudentID,
		message.TopicID,
		string(message.Role),
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	return nil
}

// GetByStudentAndTopic returns the full topic history in chronological order.
func (r *ChatRepository) GetByStudentAndTopic(ctx context.Context, studentID, topicID string) ([]chat.Message, error) {
	query := `
		SELECT id, student_id, topic_id, role, content, created_at
		FROM chat_messages
		WHERE student_id = $1 AND topic_id = $2
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetRecent returns the last N messages of the topic in chronological order.
// The inner query selects the newest rows, the outer one restores ascending
// order for the prompt composer.
func (r *ChatRepository) GetRecent(ctx context.Context, studentID, topicID string, limit int) ([]chat.Message, error) {
	query := `
		SELECT id, student_id, topic_id, role, content, created_at
		FROM (
			SELECT id, student_id, topic_id, role, content, created_at
			FROM chat_messages
			WHERE student_id = $1 AND topic_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CountByTopic returns the number of messages in the topic.
func (r *ChatRepository) CountByTopic(ctx context.Context, studentID, topicID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM chat_messages WHERE student_id = $1 AND topic_id = $2",
		studentID,
		topicID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// scanMessages scans chat messages from rows.
func scanMessages(rows pgx.Rows) ([]chat.Message, error) {
	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		var role string

		if err := rows.Scan(&m.ID, &m.StudentID, &m.TopicID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}

		m.Role = chat.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
