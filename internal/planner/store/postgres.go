// internal/planner/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"itinerary-workers/internal/models"
)

const insertPlanQuery = `INSERT INTO trip_plans
	(id, destination, start_date, end_date, mode, provenance, request, document, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO NOTHING`

// PostgresStore appends plan records to the trip_plans table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string {
	return "postgres"
}

func (s *PostgresStore) Save(ctx context.Context, rec models.PlanRecord) error {
	request, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertPlanQuery,
		rec.ID,
		rec.Request.Destination,
		rec.Request.StartDate,
		rec.Request.EndDate,
		string(rec.Mode),
		string(rec.Provenance),
		request,
		rec.Document,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}
