package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/api/middleware"
	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
)

// StudentService is the roster surface the handler depends on.
type StudentService interface {
	List(ctx context.Context, creds entities.Credentials, filter repositories.StudentFilter) ([]*entities.Student, error)
	Get(ctx context.Context, creds entities.Credentials, studentID string) (*entities.Student, error)
	Summary(ctx context.Context, creds entities.Credentials) (*entities.RosterSummary, error)
}

// StudentHandler handles student roster HTTP requests
type StudentHandler struct {
	students StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// ListStudents handles GET /api/students
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	creds := middleware.CredentialsFromContext(r.Context())
	query := r.URL.Query()

	filter := repositories.StudentFilter{
		Majors:     splitParam(query.Get("major")),
		YearLevels: splitParam(query.Get("year_level")),
	}
	for _, raw := range splitParam(query.Get("risk")) {
		filter.RiskCategories = append(filter.RiskCategories, entities.RiskCategory(raw))
	}

	students, err := h.students.List(r.Context(), creds, filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"count":    len(students),
	})
}

// GetStudent handles GET /api/students/{id}
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		respondWithError(w, http.StatusBadRequest, "student ID is required")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	student, err := h.students.Get(r.Context(), creds, studentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, student)
}

// GetSummary handles GET /api/students/summary
func (h *StudentHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	creds := middleware.CredentialsFromContext(r.Context())
	summary, err := h.students.Summary(r.Context(), creds)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// splitParam splits a comma-separated query parameter, dropping blanks.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
