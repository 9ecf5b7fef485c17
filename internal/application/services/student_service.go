package services

import (
	"context"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

// StudentService serves the at-risk roster read-model.
type StudentService struct {
	students repositories.StudentRepository
}

// NewStudentService creates a new student service
func NewStudentService(students repositories.StudentRepository) *StudentService {
	return &StudentService{students: students}
}

// List returns the roster in risk order.
func (s *StudentService) List(ctx context.Context, creds entities.Credentials, filter repositories.StudentFilter) ([]*entities.Student, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	return s.students.ListAtRisk(ctx, creds, filter)
}

// Get returns a single student record.
func (s *StudentService) Get(ctx context.Context, creds entities.Credentials, studentID string) (*entities.Student, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	if studentID == "" {
		return nil, apperrors.NewValidationError("student id is required")
	}
	return s.students.GetByID(ctx, creds, studentID)
}

// Summary returns roster aggregates for the dashboard header.
func (s *StudentService) Summary(ctx context.Context, creds entities.Credentials) (*entities.RosterSummary, error) {
	if !creds.Valid() {
		return nil, apperrors.NewUnauthorizedError("missing user credentials")
	}
	return s.students.Summary(ctx, creds)
}
