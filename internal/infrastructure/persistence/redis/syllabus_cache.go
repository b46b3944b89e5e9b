package redis

import (
	"context"
	"errors"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// syllabusTopicRecord is the cache wire format of one syllabus entry.
type syllabusTopicRecord struct {
	TopicID    string    `json:"topic_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	OrderIndex int       `json:"order_index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// syllabusRecord is the cache wire format of a full syllabus.
type syllabusRecord struct {
	StudentID      string                `json:"student_id"`
	CourseID       string                `json:"course_id"`
	CurrentTopicID string                `json:"current_topic_id"`
	Topics         []syllabusTopicRecord `json:"topics"`
	CreatedAt      time.Time             `json:"created_at"`
}

// SyllabusCache implements syllabus.Cache using the generic Redis Cache.
// It sits in front of the postgres repository for turn-time reads; every
// reconciler write invalidates the entry.
type SyllabusCache struct {
	cache *Cache
}

// NewSyllabusCache creates a new SyllabusCache.
func NewSyllabusCache(cache *Cache) *SyllabusCache {
	return &SyllabusCache{cache: cache}
}

// Get returns the cached syllabus, or shared.ErrSyllabusNotFound on a miss.
func (s *SyllabusCache) Get(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	var record syllabusRecord
	if err := s.cache.Get(ctx, SyllabusKey(studentID, courseID), &record); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrSyllabusNotFound
		}
		return nil, err
	}

	state := &syllabus.State{
		StudentID:      record.StudentID,
		CourseID:       record.CourseID,
		CurrentTopicID: record.CurrentTopicID,
		Topics:         make([]syllabus.TopicState, 0, len(record.Topics)),
		CreatedAt:      record.CreatedAt,
	}
	for _, t := range record.Topics {
		state.Topics = append(state.Topics, syllabus.TopicState{
			TopicID:    t.TopicID,
			Title:      t.Title,
			Status:     syllabus.TopicStatus(t.Status),
			OrderIndex: t.OrderIndex,
			UpdatedAt:  t.UpdatedAt,
		})
	}
	return state, nil
}

// Set stores the syllabus with the given TTL.
func (s *SyllabusCache) Set(ctx context.Context, state *syllabus.State, ttl time.Duration) error {
	if state == nil {
		return nil
	}

	record := syllabusRecord{
		StudentID:      state.StudentID,
		CourseID:       state.CourseID,
		CurrentTopicID: state.CurrentTopicID,
		Topics:         make([]syllabusTopicRecord, 0, len(state.Topics)),
		CreatedAt:      state.CreatedAt,
	}
	for _, t := range state.Topics {
		record.Topics = append(record.Topics, syllabusTopicRecord{
			TopicID:    t.TopicID,
			Title:      t.Title,
			Status:     string(t.Status),
			OrderIndex: t.OrderIndex,
			UpdatedAt:  t.UpdatedAt,
		})
	}

	return s.cache.Set(ctx, SyllabusKey(state.StudentID, state.CourseID), record, ttl)
}

// Invalidate removes the syllabus from the cache after a write.
func (s *SyllabusCache) Invalidate(ctx context.Context, studentID, courseID string) error {
	return s.cache.Delete(ctx, SyllabusKey(studentID, courseID))
}
