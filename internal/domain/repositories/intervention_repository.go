package repositories

import (
	"context"
	"time"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// InterventionRepository defines the intervention write-model. Rows are
// created by form submission, transitioned Pending→Completed once, and never
// deleted.
type InterventionRepository interface {
	// Create inserts a new intervention. The backing table is created
	// idempotently before the first write.
	Create(ctx context.Context, creds entities.Credentials, intervention *entities.Intervention) error

	// ListPending returns pending interventions ordered by the priority
	// embedded in the details blob, then newest first.
	ListPending(ctx context.Context, creds entities.Credentials) ([]*entities.Intervention, error)

	// Complete marks the intervention identified by the composite key
	// (studentID, createdDate) as completed.
	Complete(ctx context.Context, creds entities.Credentials, studentID string, createdDate time.Time) error
}
