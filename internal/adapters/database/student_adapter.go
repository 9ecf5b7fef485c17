package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

const studentRiskTable = "student_risk_analysis_gold"

var studentColumns = []interface{}{
	"student_id", "full_name", "major", "year_level", "gpa",
	"courses_enrolled", "failing_grades", "risk_category", "activity_status",
}

// StudentAdapter implements the StudentRepository interface against the
// upstream risk analysis table. Every call opens its own connection as the
// requesting advisor and closes it before returning.
type StudentAdapter struct {
	connector Opener
	dialect   goqu.DialectWrapper
}

// NewStudentAdapter creates a new student adapter
func NewStudentAdapter(connector Opener) repositories.StudentRepository {
	return &StudentAdapter{
		connector: connector,
		dialect:   goqu.Dialect("postgres"),
	}
}

// riskRankExpr orders High Risk first and unknown categories last.
func riskRankExpr() exp.CaseExpression {
	return goqu.Case().
		When(goqu.C("risk_category").Eq(string(entities.RiskHigh)), 1).
		When(goqu.C("risk_category").Eq(string(entities.RiskMedium)), 2).
		When(goqu.C("risk_category").Eq(string(entities.RiskLow)), 3).
		When(goqu.C("risk_category").Eq(string(entities.RiskExcellent)), 4).
		Else(5)
}

// ListAtRisk returns the roster ordered by risk severity, then failing grade
// count, then ascending GPA.
func (a *StudentAdapter) ListAtRisk(ctx context.Context, creds entities.Credentials, filter repositories.StudentFilter) ([]*entities.Student, error) {
	db, err := a.connector.OpenRiskDB(ctx, creds)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to risk database", err)
	}
	defer db.Close()

	ds := a.dialect.From(studentRiskTable).Select(studentColumns...)
	if len(filter.RiskCategories) > 0 {
		ds = ds.Where(goqu.C("risk_category").In(filter.RiskCategories))
	}
	if len(filter.Majors) > 0 {
		ds = ds.Where(goqu.C("major").In(filter.Majors))
	}
	if len(filter.YearLevels) > 0 {
		ds = ds.Where(goqu.C("year_level").In(filter.YearLevels))
	}
	ds = ds.Order(
		riskRankExpr().Asc(),
		goqu.C("failing_grades").Desc(),
		goqu.C("gpa").Asc(),
	)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build roster query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to load student roster", err)
	}
	defer rows.Close()

	var students []*entities.Student
	for rows.Next() {
		var s entities.Student
		if err := rows.Scan(
			&s.StudentID, &s.FullName, &s.Major, &s.YearLevel, &s.GPA,
			&s.CoursesEnrolled, &s.FailingGrades, &s.RiskCategory, &s.ActivityStatus,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan student row", err)
		}
		students = append(students, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read student roster", err)
	}

	return students, nil
}

// GetByID retrieves a single student record.
func (a *StudentAdapter) GetByID(ctx context.Context, creds entities.Credentials, studentID string) (*entities.Student, error) {
	db, err := a.connector.OpenRiskDB(ctx, creds)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to risk database", err)
	}
	defer db.Close()

	query, args, err := a.dialect.From(studentRiskTable).
		Select(studentColumns...).
		Where(goqu.Ex{"student_id": studentID}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build student query", err)
	}

	var s entities.Student
	err = db.QueryRowContext(ctx, query, args...).Scan(
		&s.StudentID, &s.FullName, &s.Major, &s.YearLevel, &s.GPA,
		&s.CoursesEnrolled, &s.FailingGrades, &s.RiskCategory, &s.ActivityStatus,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("student with id %s not found", studentID))
	}
	if err != nil {
		return nil, apperrors.NewExternalError("failed to get student", err)
	}

	return &s, nil
}

// Summary aggregates roster counts by risk category and the overall GPA
// average.
func (a *StudentAdapter) Summary(ctx context.Context, creds entities.Credentials) (*entities.RosterSummary, error) {
	db, err := a.connector.OpenRiskDB(ctx, creds)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to risk database", err)
	}
	defer db.Close()

	query, args, err := a.dialect.From(studentRiskTable).
		Select(
			goqu.C("risk_category"),
			goqu.COUNT("*").As("total"),
			goqu.AVG("gpa").As("avg_gpa"),
		).
		GroupBy(goqu.C("risk_category")).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build summary query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to load roster summary", err)
	}
	defer rows.Close()

	summary := &entities.RosterSummary{ByRisk: map[entities.RiskCategory]int{}}
	var gpaWeighted float64
	for rows.Next() {
		var category string
		var total int
		var avgGPA float64
		if err := rows.Scan(&category, &total, &avgGPA); err != nil {
			return nil, apperrors.NewInternalError("failed to scan summary row", err)
		}
		summary.ByRisk[entities.RiskCategory(category)] = total
		summary.TotalStudents += total
		gpaWeighted += avgGPA * float64(total)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read roster summary", err)
	}

	if summary.TotalStudents > 0 {
		summary.AverageGPA = gpaWeighted / float64(summary.TotalStudents)
	}
	return summary, nil
}
