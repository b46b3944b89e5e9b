package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AmelieAvondet/tutoria/config"
	"github.com/AmelieAvondet/tutoria/internal/application/command"
	"github.com/AmelieAvondet/tutoria/internal/application/query"
	"github.com/AmelieAvondet/tutoria/internal/domain/shared"
	"github.com/AmelieAvondet/tutoria/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Tutoria API",
		"version":     "v1",
		"description": "REST API for the Tutoria AI tutoring engine",
		"endpoints": map[string]string{
			"health":     "/health",
			"courses":    "/api/v1/courses",
			"messages":   "/api/v1/students/{id}/courses/{course_id}/messages",
			"session":    "/api/v1/students/{id}/courses/{course_id}/session",
			"enrollment": "/api/v1/students/{id}/courses/{course_id}/enrollment",
			"progress":   "/api/v1/students/{id}/courses/{course_id}/progress",
			"summaries":  "/api/v1/students/{id}/summaries",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleMetrics exposes event bus metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Metrics == nil {
		writeJSONError(w, http.StatusNotFound, "not_found", "Metrics are not available")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

// ══════════════════════════════════════════════════════════════════════════════
// TUTORING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// studentMessageRequest is the body of the chat turn endpoint.
type studentMessageRequest struct {
	Message string `json:"message"`
}

// turnResponse is the student-facing result of a tutoring turn.
type turnResponse struct {
	Response        string `json:"response"`
	Degraded        bool   `json:"degraded,omitempty"`
	CurrentTopicID  string `json:"current_topic_id,omitempty"`
	CourseCompleted bool   `json:"course_completed,omitempty"`
}

// handleStudentMessage runs one tutoring turn for the student's message.
// A degraded turn (the model call failed) still returns 200: the student
// receives the fallback text and can simply try again.
func (s *Server) handleStudentMessage(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	courseID := r.PathValue("course_id")

	var req studentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "message must not be empty")
		return
	}

	result, err := s.deps.Orchestrator.HandleStudentMessage(r.Context(), studentID, courseID, req.Message)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if result.Degraded {
		s.logger.Warn("turn answered with fallback response",
			logger.StudentID(studentID),
			logger.CourseID(courseID),
			logger.TopicID(result.CurrentTopicID),
		)
	}

	writeJSON(w, http.StatusOK, turnResponse{
		Response:        result.Response,
		Degraded:        result.Degraded,
		CurrentTopicID:  result.CurrentTopicID,
		CourseCompleted: result.CourseCompleted,
	})
}

// handleInitSession opens the conversation for the student's current topic.
// The tutor speaks first, no student message is required.
func (s *Server) handleInitSession(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	courseID := r.PathValue("course_id")

	result, err := s.deps.Orchestrator.InitializeSession(r.Context(), studentID, courseID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if result.Degraded {
		s.logger.Warn("session opened with fallback response",
			logger.StudentID(studentID),
			logger.CourseID(courseID),
			logger.TopicID(result.CurrentTopicID),
		)
	}

	writeJSON(w, http.StatusOK, turnResponse{
		Response:        result.Response,
		Degraded:        result.Degraded,
		CurrentTopicID:  result.CurrentTopicID,
		CourseCompleted: result.CourseCompleted,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleEnroll enrolls a student into a course, materializing the syllabus.
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	courseID := r.PathValue("course_id")

	result, err := s.deps.EnrollHandler.Handle(r.Context(), command.EnrollStudentCommand{
		StudentID:     studentID,
		CourseID:      courseID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("student enrolled",
		logger.Operation("enroll"),
		logger.StudentID(studentID),
		logger.CourseID(courseID),
	)
	writeJSON(w, http.StatusCreated, result)
}

// handleUnenroll removes a student's enrollment and their syllabus state.
func (s *Server) handleUnenroll(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	courseID := r.PathValue("course_id")

	err := s.deps.UnenrollHandler.Handle(r.Context(), command.UnenrollStudentCommand{
		StudentID:     studentID,
		CourseID:      courseID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("student unenrolled",
		logger.Operation("unenroll"),
		logger.StudentID(studentID),
		logger.CourseID(courseID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// READ SIDE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProgress returns the student's progress through a course.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	courseID := r.PathValue("course_id")

	progress, err := s.deps.GetProgressHandler.Handle(r.Context(), query.GetProgressQuery{
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

// handleGetSummaries returns the archivist's topic summaries for a student.
// Optional query parameter: topic_id.
func (s *Server) handleGetSummaries(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	topicID := getQueryParam(r, "topic_id", "")

	summaries, err := s.deps.GetSummariesHandler.Handle(r.Context(), query.GetSummariesQuery{
		StudentID: studentID,
		TopicID:   topicID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleListCourses returns the course catalog.
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	if s.deps.Features != nil && !s.deps.Features.IsEnabled(config.FeatureCatalogListing, nil) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Course catalog is not available")
		return
	}

	limit := getQueryParamInt(r, "limit", 0)

	courses, err := s.deps.ListCoursesHandler.Handle(r.Context(), query.ListCoursesQuery{Limit: limit})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps a domain error to an HTTP status code.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	default:
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
