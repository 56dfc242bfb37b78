// Package runs provides the SQL-based implementation of the analysis
// run-history repository.
package runs

import (
	"fmt"
	"time"

	"github.com/pulsedeskhq/pulsedesk-go/internal/domain/entities"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/persistence/database"
)

// SQLRunRepository is the SQL-based implementation of the run-history store.
type SQLRunRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLRunRepository creates a new instance of the repository.
func NewSQLRunRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLRunRepository {
	return &SQLRunRepository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the run-history table if it does not exist.
func (r *SQLRunRepository) Migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP NOT NULL,
			profile_count INTEGER NOT NULL,
			org_count INTEGER NOT NULL,
			ticket_count INTEGER NOT NULL,
			person_count INTEGER NOT NULL,
			event_count INTEGER NOT NULL,
			degraded_sources TEXT NOT NULL DEFAULT ''
		)`

	if _, err := r.db.Exec(schema); err != nil {
		r.logger.Database().Error("Failed to migrate run-history schema", "error", err.Error())
		return fmt.Errorf("failed to migrate run-history schema: %w", err)
	}
	return nil
}

// Store saves a completed analysis run.
func (r *SQLRunRepository) Store(run *entities.AnalysisRun) error {
	const query = `
		INSERT INTO analysis_runs (id, started_at, completed_at, profile_count,
		                           org_count, ticket_count, person_count,
		                           event_count, degraded_sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing run insert", "id", run.ID)

	_, err := r.db.Exec(
		query,
		run.ID,
		run.StartedAt,
		run.CompletedAt,
		run.ProfileCount,
		run.OrgCount,
		run.TicketCount,
		run.PersonCount,
		run.EventCount,
		run.DegradedSrcs,
	)
	if err != nil {
		r.logger.Database().Error("Failed to store run", "error", err.Error(), "id", run.ID)
		return fmt.Errorf("failed to store run %s: %w", run.ID, err)
	}

	r.logger.Database().Info("Run stored", "id", run.ID, "duration", time.Since(start))
	return nil
}

// FindRecent retrieves the most recent runs, newest first.
func (r *SQLRunRepository) FindRecent(limit int) ([]*entities.AnalysisRun, error) {
	const query = `
		SELECT id, started_at, completed_at, profile_count, org_count,
		       ticket_count, person_count, event_count, degraded_sources
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT ?`

	start := time.Now()
	r.logger.Database().Debug("Loading recent runs", "limit", limit)

	rows, err := r.db.Query(query, limit)
	if err != nil {
		r.logger.Database().Error("Failed to load recent runs", "error", err.Error())
		return nil, fmt.Errorf("failed to load recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.AnalysisRun
	for rows.Next() {
		run := &entities.AnalysisRun{}
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.CompletedAt,
			&run.ProfileCount,
			&run.OrgCount,
			&run.TicketCount,
			&run.PersonCount,
			&run.EventCount,
			&run.DegradedSrcs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}

	r.logger.Database().Info("Recent runs loaded", "count", len(runs), "duration", time.Since(start))
	return runs, nil
}

// Prune deletes run records beyond the retention limit, oldest first.
func (r *SQLRunRepository) Prune(keep int) error {
	const query = `
		DELETE FROM analysis_runs
		WHERE id NOT IN (
			SELECT id FROM analysis_runs ORDER BY started_at DESC LIMIT ?
		)`

	result, err := r.db.Exec(query, keep)
	if err != nil {
		r.logger.Database().Error("Failed to prune run history", "error", err.Error())
		return fmt.Errorf("failed to prune run history: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		r.logger.Database().Info("Pruned run history", "removed", affected, "kept", keep)
	}
	return nil
}
