package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/domain/repositories"
	apperrors "github.com/riversideu/studentrisk/backend/pkg/errors"
)

const interventionTable = "student_interventions"

// The write-model table is created on first use so a fresh database needs no
// migration step before the dashboard can record interventions.
const createInterventionTable = `
CREATE TABLE IF NOT EXISTS public.student_interventions (
	student_id VARCHAR(255),
	intervention_type VARCHAR(255),
	intervention_details TEXT,
	created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	status VARCHAR(50) DEFAULT 'Pending',
	created_by VARCHAR(255),
	PRIMARY KEY (student_id, created_date)
)`

// InterventionAdapter implements the InterventionRepository interface. Like
// the student adapter it opens one connection per call as the requesting
// advisor.
type InterventionAdapter struct {
	connector Opener
	dialect   goqu.DialectWrapper
}

// NewInterventionAdapter creates a new intervention adapter
func NewInterventionAdapter(connector Opener) repositories.InterventionRepository {
	return &InterventionAdapter{
		connector: connector,
		dialect:   goqu.Dialect("postgres"),
	}
}

// Create inserts a new intervention. created_date and status come from the
// table defaults.
func (a *InterventionAdapter) Create(ctx context.Context, creds entities.Credentials, intervention *entities.Intervention) error {
	db, err := a.connector.OpenInterventionDB(ctx, creds)
	if err != nil {
		return apperrors.NewExternalError("failed to connect to intervention database", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createInterventionTable); err != nil {
		return apperrors.NewExternalError("failed to ensure intervention table", err)
	}

	record := goqu.Record{
		"student_id":           intervention.StudentID,
		"intervention_type":    intervention.Type,
		"intervention_details": intervention.Details,
		"created_by":           intervention.CreatedBy,
	}

	query, args, err := a.dialect.Insert(interventionTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to create intervention", err)
	}

	return nil
}

// priorityRankExpr orders by the priority label embedded in the details
// blob. Rows without a recognizable label sort last.
func priorityRankExpr() exp.CaseExpression {
	return goqu.Case().
		When(goqu.C("intervention_details").Like("%Priority: High%"), 1).
		When(goqu.C("intervention_details").Like("%Priority: Medium%"), 2).
		When(goqu.C("intervention_details").Like("%Priority: Low%"), 3).
		Else(4)
}

// ListPending returns pending interventions, highest priority first, newest
// first within a priority.
func (a *InterventionAdapter) ListPending(ctx context.Context, creds entities.Credentials) ([]*entities.Intervention, error) {
	db, err := a.connector.OpenInterventionDB(ctx, creds)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to connect to intervention database", err)
	}
	defer db.Close()

	query, args, err := a.dialect.From(interventionTable).
		Select(
			"student_id", "intervention_type", "intervention_details",
			"created_date", "status", "created_by",
		).
		Where(goqu.Ex{"status": string(entities.InterventionStatusPending)}).
		Order(
			priorityRankExpr().Asc(),
			goqu.C("created_date").Desc(),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build pending query", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to load pending interventions", err)
	}
	defer rows.Close()

	var interventions []*entities.Intervention
	for rows.Next() {
		var i entities.Intervention
		if err := rows.Scan(
			&i.StudentID, &i.Type, &i.Details,
			&i.CreatedDate, &i.Status, &i.CreatedBy,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan intervention row", err)
		}
		interventions = append(interventions, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read pending interventions", err)
	}

	return interventions, nil
}

// Complete marks one intervention as completed by its composite key.
func (a *InterventionAdapter) Complete(ctx context.Context, creds entities.Credentials, studentID string, createdDate time.Time) error {
	db, err := a.connector.OpenInterventionDB(ctx, creds)
	if err != nil {
		return apperrors.NewExternalError("failed to connect to intervention database", err)
	}
	defer db.Close()

	query, args, err := a.dialect.Update(interventionTable).
		Set(goqu.Record{"status": string(entities.InterventionStatusCompleted)}).
		Where(goqu.Ex{
			"student_id":   studentID,
			"created_date": createdDate,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build complete query", err)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewExternalError("failed to complete intervention", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError("no pending intervention matches that student and date")
	}
	return nil
}
