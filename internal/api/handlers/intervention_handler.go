package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/api/middleware"
	"github.com/riversideu/studentrisk/backend/internal/application/services"
	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// InterventionService is the intervention surface the handler depends on.
type InterventionService interface {
	Submit(ctx context.Context, creds entities.Credentials, input services.SubmitInterventionInput) (*entities.Intervention, error)
	ListPending(ctx context.Context, creds entities.Credentials) ([]*entities.Intervention, error)
	Complete(ctx context.Context, creds entities.Credentials, studentID string, createdDate time.Time) error
}

// InterventionHandler handles intervention HTTP requests
type InterventionHandler struct {
	interventions InterventionService
}

// NewInterventionHandler creates a new intervention handler
func NewInterventionHandler(interventions InterventionService) *InterventionHandler {
	return &InterventionHandler{interventions: interventions}
}

// SubmitIntervention handles POST /api/interventions
func (h *InterventionHandler) SubmitIntervention(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitInterventionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	intervention, err := h.interventions.Submit(r.Context(), creds, input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, intervention)
}

// ListPending handles GET /api/interventions/pending
func (h *InterventionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	creds := middleware.CredentialsFromContext(r.Context())
	pending, err := h.interventions.ListPending(r.Context(), creds)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"interventions": pending,
		"count":         len(pending),
	})
}

type completeInterventionRequest struct {
	StudentID   string    `json:"student_id"`
	CreatedDate time.Time `json:"created_date"`
}

// CompleteIntervention handles POST /api/interventions/complete
func (h *InterventionHandler) CompleteIntervention(w http.ResponseWriter, r *http.Request) {
	var req completeInterventionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creds := middleware.CredentialsFromContext(r.Context())
	if err := h.interventions.Complete(r.Context(), creds, req.StudentID, req.CreatedDate); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"student_id": req.StudentID,
		"status":     string(entities.InterventionStatusCompleted),
	})
}
