package services

import (
	"context"
	"strings"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

// InterventionService records and tracks remediation actions.
type InterventionService struct {
	interventions repositories.InterventionRepository
	students      repositories.StudentRepository
}

// NewInterventionService creates a new intervention service
func NewInterventionService(
	interventions repositories.InterventionRepository,
	students repositories.StudentRepository,
) *InterventionService {
	return &InterventionService{
		interventions: interventions,
		students:      students,
	}
}

// SubmitInterventionInput is the intervention-form payload.
type SubmitInterventionInput struct {
	StudentID        string `json:"student_id"`
	InterventionType string `json:"intervention_type"`
	Details          string `json:"details"`
}

// Submit validates and records a new intervention. The creating advisor is
// taken from the forwarded credentials, never from the payload.
func (s *InterventionService) Submit(ctx context.Context, creds entities.Credentials, input SubmitInterventionInput) (*entities.Intervention, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	if input.StudentID == "" {
		return nil, apperrors.NewValidationError("student id is required")
	}
	interventionType := entities.InterventionType(input.InterventionType)
	if !interventionType.IsValid() {
		return nil, apperrors.NewValidationError("unknown intervention type: " + input.InterventionType)
	}
	if strings.TrimSpace(input.Details) == "" {
		return nil, apperrors.NewValidationError("intervention details are required")
	}

	// Reject submissions for students that are not on the roster.
	if _, err := s.students.GetByID(ctx, creds, input.StudentID); err != nil {
		return nil, err
	}

	intervention := &entities.Intervention{
		StudentID: input.StudentID,
		Type:      interventionType,
		Details:   input.Details,
		Status:    entities.InterventionStatusPending,
		CreatedBy: creds.Email,
	}
	if err := s.interventions.Create(ctx, creds, intervention); err != nil {
		return nil, err
	}
	return intervention, nil
}

// ListPending returns open interventions, highest priority first.
func (s *InterventionService) ListPending(ctx context.Context, creds entities.Credentials) ([]*entities.Intervention, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	return s.interventions.ListPending(ctx, creds)
}

// Complete marks one intervention as completed.
func (s *InterventionService) Complete(ctx context.Context, creds entities.Credentials, studentID string, createdDate time.Time) error {
	if !creds.Valid() {
		return apperrors.NewUnauthorizedError("missing user credentials")
	}
	if studentID == "" || createdDate.IsZero() {
		return apperrors.NewValidationError("student id and created date are required")
	}
	return s.interventions.Complete(ctx, creds, studentID, createdDate)
}
