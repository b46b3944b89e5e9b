package redis

import (
	"context"
	"time"
)

// DedupeGuard implements tutor.DedupeGuard with a Redis SET NX lock.
// When the same topic completion fires twice in quick succession, only the
// first caller acquires the key and runs the archivist. The lock is never
// released explicitly; it expires on its own, and the unique constraint on
// topic_summaries is the final arbiter.
type DedupeGuard struct {
	cache *Cache
	ttl   time.Duration
}

// NewDedupeGuard creates a new DedupeGuard. A non-positive ttl falls back to
// TTLSummaryLock.
func NewDedupeGuard(cache *Cache, ttl time.Duration) *DedupeGuard {
	if ttl <= 0 {
		ttl = TTLSummaryLock
	}
	return &DedupeGuard{cache: cache, ttl: ttl}
}

// TryAcquire returns true when this caller won the right to run the
// archivist for (student, topic).
func (g *DedupeGuard) TryAcquire(ctx context.Context, studentID, topicID string) (bool, error) {
	return g.cache.SetNX(ctx, SummaryLockKey(studentID, topicID), time.Now().UTC(), g.ttl)
}
