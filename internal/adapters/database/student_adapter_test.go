package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"student_id", "full_name", "major", "year_level", "gpa",
		"courses_enrolled", "failing_grades", "risk_category", "activity_status",
	})
}

func TestStudentAdapterListAtRisk(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewStudentAdapter(&stubOpener{db: db})

	rows := studentRows().
		AddRow("S001", "Ada Okafor", "Computer Science", "Sophomore", 1.8, 5, 3, "High Risk", "Active").
		AddRow("S002", "Ben Ortiz", "Biology", "Junior", 2.6, 4, 1, "Medium Risk", "Active")

	mock.ExpectQuery(`SELECT .* FROM "student_risk_analysis_gold" ORDER BY CASE`).
		WillReturnRows(rows)

	students, err := adapter.ListAtRisk(context.Background(), advisorCreds(), repositories.StudentFilter{})

	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "S001", students[0].StudentID)
	assert.Equal(t, entities.RiskHigh, students[0].RiskCategory)
	assert.InDelta(t, 1.8, students[0].GPA, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentAdapterListAtRiskAppliesFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewStudentAdapter(&stubOpener{db: db})

	mock.ExpectQuery(`WHERE \("risk_category" IN \('High Risk'\)\)`).
		WillReturnRows(studentRows())

	_, err := adapter.ListAtRisk(context.Background(), advisorCreds(), repositories.StudentFilter{
		RiskCategories: []entities.RiskCategory{entities.RiskHigh},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentAdapterGetByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewStudentAdapter(&stubOpener{db: db})

	mock.ExpectQuery(`FROM "student_risk_analysis_gold"`).
		WillReturnRows(studentRows())

	_, err := adapter.GetByID(context.Background(), advisorCreds(), "S404")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestStudentAdapterSummary(t *testing.T) {
	db, mock := setupMockDB(t)
	adapter := NewStudentAdapter(&stubOpener{db: db})

	rows := sqlmock.NewRows([]string{"risk_category", "total", "avg_gpa"}).
		AddRow("High Risk", 2, 1.9).
		AddRow("Low Risk", 2, 3.1)

	mock.ExpectQuery(`GROUP BY "risk_category"`).WillReturnRows(rows)

	summary, err := adapter.Summary(context.Background(), advisorCreds())

	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalStudents)
	assert.Equal(t, 2, summary.ByRisk[entities.RiskHigh])
	assert.InDelta(t, 2.5, summary.AverageGPA, 0.001)
}
