package tutor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/internal/domain/syllabus"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELTA PARSER / VALIDATOR
// Structural validation only: the parser checks shape and field types. It
// does not check that topic IDs exist in the syllabus; that is the
// reconciler's job.
// ══════════════════════════════════════════════════════════════════════════════

// ParseError reports a delta that is missing or is not valid JSON.
type ParseError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("state delta is not valid JSON: %v", e.Err)
	}
	return "state delta is missing"
}

// Unwrap routes errors.Is checks to the shared format error.
func (e *ParseError) Unwrap() error {
	return shared.ErrInvalidFormat
}

// SchemaError reports valid JSON that does not match the StateUpdate shape.
type SchemaError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("state delta schema violation in %q: %s", e.Field, e.Reason)
}

// Unwrap routes errors.Is checks to the shared format error.
func (e *SchemaError) Unwrap() error {
	return shared.ErrInvalidFormat
}

// ParseStateUpdate parses and validates the delta text produced by the
// splitter. Returns *ParseError when the text is empty or not JSON, and
// *SchemaError when the JSON does not match the required shape.
func ParseStateUpdate(deltaText string) (*syllabus.StateUpdate, error) {
	trimmed := strings.TrimSpace(deltaText)
	if trimmed == "" {
		return nil, &ParseError{Raw: deltaText}
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		// Valid JSON that is not an object is a shape problem, not a
		// parse problem.
		if json.Valid([]byte(trimmed)) {
			return nil, &SchemaError{Field: "$", Reason: "top-level value must be an object"}
		}
		return nil, &ParseError{Raw: trimmed, Err: err}
	}

	update := &syllabus.StateUpdate{}

	rawTrigger, ok := root["trigger_summary_generation"]
	if !ok {
		return nil, &SchemaError{Field: "trigger_summary_generation", Reason: "field is required"}
	}
	if err := json.Unmarshal(rawTrigger, &update.TriggerSummaryGeneration); err != nil {
		return nil, &SchemaError{Field: "trigger_summary_generation", Reason: "must be a boolean"}
	}

	rawCurrent, ok := root["current_topic_id"]
	if !ok {
		return nil, &SchemaError{Field: "current_topic_id", Reason: "field is required"}
	}
	if err := json.Unmarshal(rawCurrent, &update.CurrentTopicID); err != nil {
		return nil, &SchemaError{Field: "current_topic_id", Reason: "must be a string"}
	}

	rawTopics, ok := root["topics_updated"]
	if !ok {
		return nil, &SchemaError{Field: "topics_updated", Reason: "field is required"}
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawTopics, &entries); err != nil {
		return nil, &SchemaError{Field: "topics_updated", Reason: "must be a list of objects"}
	}

	for i, entry := range entries {
		field := fmt.Sprintf("topics_updated[%d]", i)

		var topicID string
		rawID, ok := entry["topic_id"]
		if !ok {
			return nil, &SchemaError{Field: field + ".topic_id", Reason: "field is required"}
		}
		if err := json.Unmarshal(rawID, &topicID); err != nil {
			return nil, &SchemaError{Field: field + ".topic_id", Reason: "must be a string"}
		}

		var rawStatus string
		rawS, ok := entry["status"]
		if !ok {
			return nil, &SchemaError{Field: field + ".status", Reason: "field is required"}
		}
		if err := json.Unmarshal(rawS, &rawStatus); err != nil {
			return nil, &SchemaError{Field: field + ".status", Reason: "must be a string"}
		}
		status, err := syllabus.ParseTopicStatus(rawStatus)
		if err != nil {
			return nil, &SchemaError{Field: field + ".status", Reason: fmt.Sprintf("unknown status %q", rawStatus)}
		}

		update.TopicsUpdated = append(update.TopicsUpdated, syllabus.TopicChange{
			TopicID: topicID,
			Status:  status,
		})
	}

	return update, nil
}
