package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

type stubInterventionRepo struct {
	created   *entities.Intervention
	pending   []*entities.Intervention
	completed []string
	err       error
}

func (s *stubInterventionRepo) Create(ctx context.Context, creds entities.Credentials, intervention *entities.Intervention) error {
	if s.err != nil {
		return s.err
	}
	s.created = intervention
	return nil
}

func (s *stubInterventionRepo) ListPending(ctx context.Context, creds entities.Credentials) ([]*entities.Intervention, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pending, nil
}

func (s *stubInterventionRepo) Complete(ctx context.Context, creds entities.Credentials, studentID string, createdDate time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.completed = append(s.completed, studentID)
	return nil
}

func TestSubmitRecordsAdvisorAsCreator(t *testing.T) {
	repo := &stubInterventionRepo{}
	svc := NewInterventionService(repo, &stubStudentRepo{student: testStudent()})

	intervention, err := svc.Submit(context.Background(), serviceCreds(), SubmitInterventionInput{
		StudentID:        "S001",
		InterventionType: "Tutoring Referral",
		Details:          "Priority: High\n\nWeekly math tutoring",
	})

	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "advisor@university.edu", intervention.CreatedBy)
	assert.Equal(t, entities.InterventionTutoringReferral, intervention.Type)
	assert.Equal(t, entities.InterventionStatusPending, intervention.Status)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewInterventionService(&stubInterventionRepo{}, &stubStudentRepo{student: testStudent()})

	cases := []struct {
		name  string
		input SubmitInterventionInput
	}{
		{"missing student id", SubmitInterventionInput{InterventionType: "Tutoring Referral", Details: "d"}},
		{"unknown type", SubmitInterventionInput{StudentID: "S001", InterventionType: "Detention", Details: "d"}},
		{"blank details", SubmitInterventionInput{StudentID: "S001", InterventionType: "Tutoring Referral", Details: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), serviceCreds(), tc.input)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}

func TestSubmitUnknownStudent(t *testing.T) {
	repo := &stubStudentRepo{err: apperrors.NewNotFoundError("student with id S404 not found")}
	svc := NewInterventionService(&stubInterventionRepo{}, repo)

	_, err := svc.Submit(context.Background(), serviceCreds(), SubmitInterventionInput{
		StudentID:        "S404",
		InterventionType: "Tutoring Referral",
		Details:          "d",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestSubmitRequiresCredentials(t *testing.T) {
	svc := NewInterventionService(&stubInterventionRepo{}, &stubStudentRepo{student: testStudent()})

	_, err := svc.Submit(context.Background(), entities.Credentials{Email: "advisor@university.edu"}, SubmitInterventionInput{
		StudentID:        "S001",
		InterventionType: "Tutoring Referral",
		Details:          "d",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
}

func TestCompleteRequiresDate(t *testing.T) {
	svc := NewInterventionService(&stubInterventionRepo{}, &stubStudentRepo{student: testStudent()})

	err := svc.Complete(context.Background(), serviceCreds(), "S001", time.Time{})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestCompleteDelegates(t *testing.T) {
	repo := &stubInterventionRepo{}
	svc := NewInterventionService(repo, &stubStudentRepo{student: testStudent()})

	err := svc.Complete(context.Background(), serviceCreds(), "S001", time.Now())

	require.NoError(t, err)
	assert.Equal(t, []string{"S001"}, repo.completed)
}
