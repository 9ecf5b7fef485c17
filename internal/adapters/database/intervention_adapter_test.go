package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

// stubOpener hands the same mock connection to every call.
type stubOpener struct {
	db *sql.DB
}

func (o *stubOpener) OpenRiskDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error) {
	return o.db, nil
}

func (o *stubOpener) OpenInterventionDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error) {
	return o.db, nil
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	return db, mock
}

func advisorCreds() entities.Credentials {
	return entities.Credentials{Email: "advisor@university.edu", Token: "tok"}
}

func TestInterventionAdapterCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewInterventionAdapter(&stubOpener{db: db})

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS public\.student_interventions`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "student_interventions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), advisorCreds(), &entities.Intervention{
		StudentID: "S001",
		Type:      entities.InterventionTutoringReferral,
		Details:   "Priority: High\n\nWeekly tutoring sessions",
		CreatedBy: "advisor@university.edu",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionAdapterListPendingOrdersByPriority(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewInterventionAdapter(&stubOpener{db: db})

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"student_id", "intervention_type", "intervention_details",
		"created_date", "status", "created_by",
	}).
		AddRow("S001", "Tutoring Referral", "Priority: High\ndetails", now, "Pending", "advisor@university.edu").
		AddRow("S002", "Academic Meeting", "Priority: Low\ndetails", now, "Pending", "advisor@university.edu")

	mock.ExpectQuery(`SELECT .* FROM "student_interventions" WHERE \("status" = 'Pending'\) ORDER BY CASE`).
		WillReturnRows(rows)

	interventions, err := adapter.ListPending(context.Background(), advisorCreds())

	require.NoError(t, err)
	require.Len(t, interventions, 2)
	assert.Equal(t, "S001", interventions[0].StudentID)
	assert.Equal(t, entities.PriorityHigh, interventions[0].Priority())
	assert.Equal(t, entities.PriorityLow, interventions[1].Priority())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionAdapterComplete(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewInterventionAdapter(&stubOpener{db: db})

	mock.ExpectExec(`UPDATE "student_interventions" SET "status"='Completed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Complete(context.Background(), advisorCreds(), "S001", time.Now())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionAdapterCompleteNoMatch(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewInterventionAdapter(&stubOpener{db: db})

	mock.ExpectExec(`UPDATE "student_interventions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Complete(context.Background(), advisorCreds(), "S404", time.Now())

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
