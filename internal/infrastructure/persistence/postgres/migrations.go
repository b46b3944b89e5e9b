// Package postgres implements the PostgreSQL persistence layer for the
// tutoring engine.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create course catalog tables
-- Version: 001

-- Published courses
CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Topics of a course. order_index is the canonical teaching order and is
-- never reused within a course.
CREATE TABLE IF NOT EXISTS course_topics (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    order_index INTEGER NOT NULL,

    UNIQUE(course_id, order_index),
    CONSTRAINT valid_order_index CHECK (order_index >= 0)
);

CREATE INDEX IF NOT EXISTS idx_course_topics_course ON course_topics(course_id, order_index);

-- Teaching persona per course. Courses without a row fall back to the
-- default persona in code.
CREATE TABLE IF NOT EXISTS persona_configs (
    course_id UUID PRIMARY KEY REFERENCES courses(id) ON DELETE CASCADE,
    tone VARCHAR(100) NOT NULL,
    explanation_style VARCHAR(255) NOT NULL,
    language VARCHAR(10) NOT NULL DEFAULT 'es',
    difficulty_level VARCHAR(50) NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
CREATE TRIGGER update_courses_updated_at
    BEFORE UPDATE ON courses
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS persona_configs;
DROP TABLE IF EXISTS course_topics;
DROP TABLE IF EXISTS courses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE SYLLABUS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create per-student syllabus state
-- Version: 002

-- One row per (student, topic). The whole set of rows for a
-- (student, course) pair is the student's personal syllabus; it is created
-- at enrollment and mutated one row at a time by the reconciler.
CREATE TABLE IF NOT EXISTS syllabus_topics (
    student_id UUID NOT NULL,
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    topic_id UUID NOT NULL REFERENCES course_topics(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    order_index INTEGER NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (student_id, topic_id),
    UNIQUE(student_id, course_id, order_index),
    CONSTRAINT valid_topic_status CHECK (status IN ('pending', 'in_progress', 'completed'))
);

CREATE INDEX IF NOT EXISTS idx_syllabus_topics_student_course ON syllabus_topics(student_id, course_id, order_index);
CREATE INDEX IF NOT EXISTS idx_syllabus_topics_in_progress ON syllabus_topics(student_id, course_id) WHERE status = 'in_progress';
`

const migration002Down = `
DROP TABLE IF EXISTS syllabus_topics;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE CHAT AND SUMMARIES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create chat history and topic summaries
-- Version: 003

-- Append-only conversation history, keyed by the topic under discussion.
-- Unenrollment removes the syllabus rows and the cascade takes the history
-- and the summaries with it.
CREATE TABLE IF NOT EXISTS chat_messages (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL,
    topic_id UUID NOT NULL,
    role VARCHAR(12) NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    FOREIGN KEY (student_id, topic_id) REFERENCES syllabus_topics(student_id, topic_id) ON DELETE CASCADE,
    CONSTRAINT valid_chat_role CHECK (role IN ('user', 'assistant'))
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_topic ON chat_messages(student_id, topic_id, created_at);

-- Pedagogical summaries written by the archivist. One per (student, topic),
-- written once and never updated.
CREATE TABLE IF NOT EXISTS topic_summaries (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL,
    topic_id UUID NOT NULL,
    completion_summary TEXT NOT NULL,
    student_doubts JSONB NOT NULL DEFAULT '[]'::jsonb,
    effective_analogies TEXT NOT NULL DEFAULT '',
    engagement_level VARCHAR(10) NOT NULL,
    next_session_hook TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, topic_id),
    FOREIGN KEY (student_id, topic_id) REFERENCES syllabus_topics(student_id, topic_id) ON DELETE CASCADE,
    CONSTRAINT valid_engagement_level CHECK (engagement_level IN ('High', 'Medium', 'Low'))
);

CREATE INDEX IF NOT EXISTS idx_topic_summaries_student ON topic_summaries(student_id, created_at);
`

const migration003Down = `
DROP TABLE IF EXISTS topic_summaries;
DROP TABLE IF EXISTS chat_messages;
`
