package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/pkg/config"
)

// Connector opens short-lived database connections authenticated as the
// requesting advisor. Connections are opened per request and closed at the
// end of the enclosing scope; nothing is pooled across requests, so one
// advisor's session can never serve another's query.
type Connector struct {
	cfg *config.DatabaseConfig
}

// NewConnector creates a connector for the configured database host.
func NewConnector(cfg *config.DatabaseConfig) *Connector {
	return &Connector{cfg: cfg}
}

// OpenRiskDB connects to the student risk database as the advisor.
func (c *Connector) OpenRiskDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error) {
	return c.open(ctx, c.cfg.RiskDatabase, creds)
}

// OpenInterventionDB connects to the interventions database as the advisor.
func (c *Connector) OpenInterventionDB(ctx context.Context, creds entities.Credentials) (*sql.DB, error) {
	return c.open(ctx, c.cfg.InterventionDatabase, creds)
}

func (c *Connector) open(ctx context.Context, dbname string, creds entities.Credentials) (*sql.DB, error) {
	db, err := sql.Open("postgres", c.cfg.UserDSN(dbname, creds.Email, creds.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to %s: %w", dbname, err)
	}

	// One connection per request, nothing kept idle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(time.Duration(c.cfg.ConnectTimeoutSeconds) * time.Second * 10)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.ConnectTimeoutSeconds)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dbname, err)
	}

	return db, nil
}
