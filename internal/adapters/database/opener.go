package database

import (
	"context"
	"database/sql"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// Opener provides per-request connections to the two logical databases,
// authenticated as the requesting advisor. Satisfied by postgres.Connector.
type Opener interface {
	OpenRiskDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error)
	OpenInterventionDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error)
}
