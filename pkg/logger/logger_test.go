package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureEntry(t *testing.T, log func(l *Logger)) LogEntry {
	t.Helper()

	var buf bytes.Buffer
	log(New(Options{Output: &buf, Level: LevelDebug}))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestTutoringFieldHelpers(t *testing.T) {
	entry := captureEntry(t, func(l *Logger) {
		l.Info("turn finished",
			StudentID("student-1"),
			CourseID("course-1"),
			TopicID("t-1"),
			Operation("message"),
			Latency(1500*time.Millisecond),
		)
	})

	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "student-1", entry.Fields["student_id"])
	assert.Equal(t, "course-1", entry.Fields["course_id"])
	assert.Equal(t, "t-1", entry.Fields["topic_id"])
	assert.Equal(t, "message", entry.Fields["operation"])
	assert.Equal(t, "1.5s", entry.Fields["latency"])
}

func TestWith_CarriesComponentIntoEveryEntry(t *testing.T) {
	entry := captureEntry(t, func(l *Logger) {
		l.With(Component("http")).Warn("slow request", Latency(2*time.Second))
	})

	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "http", entry.Fields["component"])
	assert.Equal(t, "2s", entry.Fields["latency"])
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
}
