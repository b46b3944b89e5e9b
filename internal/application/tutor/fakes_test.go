package tutor

import (
	"context"
	"errors"
	"time"

	"github.com/AmelieAvondet/tutoria/internal/domain/chat"
	"github.com/AmelieAvondet/tutoria/internal/domain/course"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/summary"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// In-package fakes shared by the pipeline tests. Each fake records the calls
// it receives so tests can assert on side effects.

type statusWrite struct {
	TopicID string
	Status  syllabus.TopicStatus
}

type fakeSyllabusRepo struct {
	state  *syllabus.State
	getErr error

	writes    []statusWrite
	failTopic map[string]error
}

func (f *fakeSyllabusRepo) Create(ctx context.Context, state *syllabus.State) error {
	f.state = state
	return nil
}

func (f *fakeSyllabusRepo) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.state == nil {
		return nil, shared.ErrSyllabusNotFound
	}
	return f.state, nil
}

func (f *fakeSyllabusRepo) SetTopicStatus(ctx context.Context, studentID, courseID, topicID string, status syllabus.TopicStatus) error {
	if err, ok := f.failTopic[topicID]; ok {
		return err
	}
	f.writes = append(f.writes, statusWrite{TopicID: topicID, Status: status})
	return nil
}

func (f *fakeSyllabusRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	return f.state != nil, nil
}

func (f *fakeSyllabusRepo) DeleteForStudent(ctx context.Context, studentID, courseID string) error {
	f.state = nil
	return nil
}

type fakeSyllabusCache struct {
	state       *syllabus.State
	sets        int
	invalidates int
}

func (f *fakeSyllabusCache) Get(ctx context.Context, studentID, courseID string) (*syllabus.State, error) {
	if f.state == nil {
		return nil, shared.ErrSyllabusNotFound
	}
	return f.state, nil
}

func (f *fakeSyllabusCache) Set(ctx context.Context, state *syllabus.State, ttl time.Duration) error {
	f.state = state
	f.sets++
	return nil
}

func (f *fakeSyllabusCache) Invalidate(ctx context.Context, studentID, courseID string) error {
	f.state = nil
	f.invalidates++
	return nil
}

type fakeBus struct {
	events     []shared.Event
	publishErr error
}

func (f *fakeBus) Publish(event shared.Event) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBus) typesPublished() []shared.EventType {
	var types []shared.EventType
	for _, e := range f.events {
		types = append(types, e.EventType())
	}
	return types
}

type fakeModel struct {
	reply string
	err   error

	calls   int
	prompts []string
}

func (f *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeChatRepo struct {
	history   []chat.Message
	getErr    error
	appendErr error

	appended []chat.Message
}

func (f *fakeChatRepo) Append(ctx context.Context, message *chat.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, *message)
	return nil
}

func (f *fakeChatRepo) GetByStudentAndTopic(ctx context.Context, studentID, topicID string) ([]chat.Message, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.history, nil
}

func (f *fakeChatRepo) GetRecent(ctx context.Context, studentID, topicID string, limit int) ([]chat.Message, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if limit < len(f.history) {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}

func (f *fakeChatRepo) CountByTopic(ctx context.Context, studentID, topicID string) (int, error) {
	return len(f.history), nil
}

type fakeCourseRepo struct {
	persona    course.PersonaConfig
	personaErr error
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, courseID string) (*course.Course, error) {
	return nil, shared.ErrCourseNotFound
}

func (f *fakeCourseRepo) GetTopics(ctx context.Context, courseID string) ([]course.Topic, error) {
	return nil, nil
}

func (f *fakeCourseRepo) GetTopic(ctx context.Context, topicID string) (*course.Topic, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeCourseRepo) GetPersona(ctx context.Context, courseID string) (course.PersonaConfig, error) {
	if f.personaErr != nil {
		return course.PersonaConfig{}, f.personaErr
	}
	return f.persona, nil
}

func (f *fakeCourseRepo) List(ctx context.Context) ([]*course.Course, error) {
	return nil, nil
}

type fakeSummaryRepo struct {
	saved   []*summary.TopicSummary
	saveErr error
}

func (f *fakeSummaryRepo) Save(ctx context.Context, s *summary.TopicSummary) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSummaryRepo) GetByStudentAndTopic(ctx context.Context, studentID, topicID string) (*summary.TopicSummary, error) {
	for _, s := range f.saved {
		if s.StudentID == studentID && s.TopicID == topicID {
			return s, nil
		}
	}
	return nil, shared.ErrSummaryNotFound
}

func (f *fakeSummaryRepo) GetByStudent(ctx context.Context, studentID string) ([]*summary.TopicSummary, error) {
	return f.saved, nil
}

func (f *fakeSummaryRepo) Exists(ctx context.Context, studentID, topicID string) (bool, error) {
	_, err := f.GetByStudentAndTopic(ctx, studentID, topicID)
	return err == nil, nil
}

type fakeGuard struct {
	acquired bool
	err      error
	calls    int
}

func (f *fakeGuard) TryAcquire(ctx context.Context, studentID, topicID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.acquired, nil
}

var errBoom = errors.New("boom")

// threeTopicState builds the canonical test syllabus: t-1 in progress,
// t-2 and t-3 pending.
func threeTopicState() *syllabus.State {
	state, _ := syllabus.NewState(syllabus.NewStateParams{
		StudentID: "student-1",
		CourseID:  "course-1",
		Topics: []syllabus.TopicState{
			{TopicID: "t-1", Title: "Variables"},
			{TopicID: "t-2", Title: "Tipos de datos"},
			{TopicID: "t-3", Title: "Funciones"},
		},
	})
	return state
}
