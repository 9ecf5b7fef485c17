package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/riversideu/studentrisk/backend/internal/api/middleware"
	"github.com/riversideu/studentrisk/backend/internal/application/normalize"
	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/observability"
)

// RecommendationService is the AI advisory surface the handler depends on.
type RecommendationService interface {
	Generate(ctx context.Context, creds entities.Credentials, studentID string) (*entities.RecommendationResult, error)
	GenerateStream(ctx context.Context, creds entities.Credentials, studentID string, sink normalize.Sink) (*entities.RecommendationResult, error)
	GenerateDetails(ctx context.Context, creds entities.Credentials, studentID, interventionType, priority string) (string, error)
	PrefillForm(rec entities.Recommendation, student *entities.Student) entities.FormPrefill
}

// RecommendationHandler handles AI recommendation HTTP requests
type RecommendationHandler struct {
	recommendations RecommendationService
	students        StudentService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations RecommendationService, students StudentService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		students:        students,
	}
}

// GenerateRecommendations handles POST /api/students/{id}/recommendations
func (h *RecommendationHandler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		respondWithError(w, http.StatusBadRequest, "student ID is required")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	result, err := h.recommendations.Generate(r.Context(), creds, studentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// StreamRecommendations handles GET /api/students/{id}/recommendations/stream.
// Renderable batches are pushed as SSE events while the model works; the
// final classified result closes the stream.
func (h *RecommendationHandler) StreamRecommendations(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("id")
	if studentID == "" {
		respondWithError(w, http.StatusBadRequest, "student ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sink := normalize.SinkFunc(func(items []normalize.Renderable) error {
		if err := sendEvent(w, "renderables", items); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	creds := middleware.CredentialsFromContext(r.Context())
	result, err := h.recommendations.GenerateStream(r.Context(), creds, studentID, sink)
	if err != nil {
		// Headers are already sent; the best we can do is an error event.
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("student_id", studentID).Msg("recommendation stream failed")
		sendEvent(w, "error", map[string]string{"error": "recommendation stream failed"})
		flusher.Flush()
		return
	}

	sendEvent(w, "result", result)
	flusher.Flush()
}

type detailsRequest struct {
	StudentID        string `json:"student_id"`
	InterventionType string `json:"intervention_type"`
	Priority         string `json:"priority"`
}

// GenerateDetails handles POST /api/recommendations/details
func (h *RecommendationHandler) GenerateDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudentID == "" || req.InterventionType == "" || req.Priority == "" {
		respondWithError(w, http.StatusBadRequest, "student_id, intervention_type and priority are required")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	details, err := h.recommendations.GenerateDetails(r.Context(), creds, req.StudentID, req.InterventionType, req.Priority)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"details": details,
	})
}

type prefillRequest struct {
	StudentID      string                  `json:"student_id"`
	Recommendation entities.Recommendation `json:"recommendation"`
}

// PrefillForm handles POST /api/recommendations/prefill
func (h *RecommendationHandler) PrefillForm(w http.ResponseWriter, r *http.Request) {
	var req prefillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StudentID == "" {
		respondWithError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	student, err := h.students.Get(r.Context(), creds, req.StudentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.recommendations.PrefillForm(req.Recommendation, student))
}

// sendEvent writes one SSE event to the client.
func sendEvent(w http.ResponseWriter, eventType string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", jsonData)
	return err
}
