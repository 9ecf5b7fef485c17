package repositories

import (
	"context"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// StudentFilter narrows the roster query. Empty slices mean "no filter".
type StudentFilter struct {
	RiskCategories []entities.RiskCategory
	Majors         []string
	YearLevels     []string
}

// StudentRepository defines read access to the student risk analysis
// read-model. The table is owned by the upstream pipeline; there are no
// write operations.
type StudentRepository interface {
	// ListAtRisk returns the roster ordered by risk rank, failing-course
	// count (desc) and GPA (asc).
	ListAtRisk(ctx context.Context, creds entities.Credentials, filter StudentFilter) ([]*entities.Student, error)

	// GetByID returns a single student record.
	GetByID(ctx context.Context, creds entities.Credentials, studentID string) (*entities.Student, error)

	// Summary aggregates roster counts and the average GPA.
	Summary(ctx context.Context, creds entities.Credentials) (*entities.RosterSummary, error)
}
