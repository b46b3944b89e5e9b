package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
)

func TestUnenrollStudent_DeletesSyllabusAndInvalidatesCache(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	cache := &fakeCache{}
	bus := &fakeBus{}
	handler := NewUnenrollStudentHandler(repo, cache, bus, nil)

	err := handler.Handle(context.Background(), UnenrollStudentCommand{
		StudentID: "student-1",
		CourseID:  "course-1",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"student-1/course-1"}, repo.deleted)
	assert.Equal(t, []string{"student-1/course-1"}, cache.invalidated)

	require.Len(t, bus.events, 1)
	assert.Equal(t, shared.EventStudentUnenrolled, bus.events[0].EventType())
}

func TestUnenrollStudent_DeleteFailure(t *testing.T) {
	repo := &fakeSyllabusRepo{deleteErr: errors.New("db down")}
	bus := &fakeBus{}
	handler := NewUnenrollStudentHandler(repo, nil, bus, nil)

	err := handler.Handle(context.Background(), UnenrollStudentCommand{
		StudentID: "student-1",
		CourseID:  "course-1",
	})

	assert.Error(t, err)
	assert.Empty(t, bus.events)
}

func TestUnenrollStudent_ValidatesCommand(t *testing.T) {
	handler := NewUnenrollStudentHandler(&fakeSyllabusRepo{}, nil, nil, nil)

	assert.Error(t, handler.Handle(context.Background(), UnenrollStudentCommand{CourseID: "course-1"}))
	assert.Error(t, handler.Handle(context.Background(), UnenrollStudentCommand{StudentID: "student-1"}))
}

func TestUnenrollStudent_WorksWithoutCacheOrBus(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	handler := NewUnenrollStudentHandler(repo, nil, nil, nil)

	err := handler.Handle(context.Background(), UnenrollStudentCommand{
		StudentID: "student-1",
		CourseID:  "course-1",
	})

	require.NoError(t, err)
	assert.Len(t, repo.deleted, 1)
}
