package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

const runColumns = `run_id, assignment_id, start_time, end_time, completed`

// CreateRun creates a run. The partial unique index on open runs rejects a second
// active run for the same assignment.
func (s *txStore) CreateRun(ctx context.Context, run *models.RouteRun) error {
	query := `
		INSERT INTO route_runs (
			run_id, assignment_id, start_time, end_time, completed
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.tx.Exec(ctx, query,
		run.RunID,
		run.AssignmentID,
		run.StartTime,
		run.EndTime,
		run.Completed,
	)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create run: %w", err))
	}

	log.Debug().
		Str("run_id", run.RunID.String()).
		Str("assignment_id", run.AssignmentID.String()).
		Msg("Created run")

	return nil
}

// GetActiveRun returns the open run of an assignment.
func (s *txStore) GetActiveRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error) {
	query := `SELECT ` + runColumns + ` FROM route_runs WHERE assignment_id = $1 AND NOT completed`
	return s.getRun(ctx, query, assignmentID)
}

// GetLastCompletedRun returns the completed run with the latest end time.
func (s *txStore) GetLastCompletedRun(ctx context.Context, assignmentID uuid.UUID) (*models.RouteRun, error) {
	query := `
		SELECT ` + runColumns + ` FROM route_runs
		WHERE assignment_id = $1 AND completed
		ORDER BY end_time DESC
		LIMIT 1
	`
	return s.getRun(ctx, query, assignmentID)
}

func (s *txStore) getRun(ctx context.Context, query string, args ...any) (*models.RouteRun, error) {
	run, err := scanRun(s.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrRunNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get run: %w", err))
	}

	return run, nil
}

// CompleteRun marks an open run completed.
func (s *txStore) CompleteRun(ctx context.Context, runID uuid.UUID, endTime time.Time) error {
	result, err := s.tx.Exec(ctx, `
		UPDATE route_runs SET completed = TRUE, end_time = $2
		WHERE run_id = $1 AND NOT completed
	`, runID, endTime)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to complete run: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrRunNotFound
	}

	log.Debug().
		Str("run_id", runID.String()).
		Time("end_time", endTime).
		Msg("Completed run")

	return nil
}

// ListRunsByGuard returns the guard's runs started in [from, to) ordered by start time.
func (s *txStore) ListRunsByGuard(ctx context.Context, guardID uuid.UUID, from, to time.Time) ([]*models.RouteRun, error) {
	query := `
		SELECT r.run_id, r.assignment_id, r.start_time, r.end_time, r.completed
		FROM route_runs r
		JOIN guard_assignments a ON a.assignment_id = r.assignment_id
		WHERE a.guard_id = $1 AND r.start_time >= $2 AND r.start_time < $3
		ORDER BY r.start_time, r.run_id
	`

	rows, err := s.tx.Query(ctx, query, guardID, from, to)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list runs: %w", err))
	}
	defer rows.Close()

	var runs []*models.RouteRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating runs: %w", err))
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*models.RouteRun, error) {
	var run models.RouteRun
	err := row.Scan(
		&run.RunID,
		&run.AssignmentID,
		&run.StartTime,
		&run.EndTime,
		&run.Completed,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

const scanSelect = `
	SELECT s.scan_id, s.checkpoint_id, s.run_id, s.scanned_at, c.name, c.code, c.sort_order
	FROM checkpoint_scans s
	JOIN checkpoints c ON c.checkpoint_id = s.checkpoint_id
`

// CreateScan records a checkpoint scan. A second scan of the same checkpoint in the
// run returns ErrScanAlreadyExists without aborting the transaction.
func (s *txStore) CreateScan(ctx context.Context, scan *models.CheckpointScan) error {
	result, err := s.tx.Exec(ctx, `
		INSERT INTO checkpoint_scans (scan_id, checkpoint_id, run_id, scanned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checkpoint_id, run_id) DO NOTHING
	`, scan.ScanID, scan.CheckpointID, scan.RunID, scan.ScannedAt)
	if err != nil {
		return mapPostgresError(fmt.Errorf("failed to create scan: %w", err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrScanAlreadyExists
	}

	log.Debug().
		Str("scan_id", scan.ScanID.String()).
		Str("run_id", scan.RunID.String()).
		Str("checkpoint_id", scan.CheckpointID.String()).
		Msg("Created scan")

	return nil
}

// GetScan returns the scan of a checkpoint in a run.
func (s *txStore) GetScan(ctx context.Context, runID, checkpointID uuid.UUID) (*models.CheckpointScan, error) {
	query := scanSelect + ` WHERE s.run_id = $1 AND s.checkpoint_id = $2`

	scan, err := scanCheckpointScan(s.tx.QueryRow(ctx, query, runID, checkpointID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrScanNotFound
		}
		return nil, mapPostgresError(fmt.Errorf("failed to get scan: %w", err))
	}

	return scan, nil
}

// ListScans returns the scans of a run ordered by scan time.
func (s *txStore) ListScans(ctx context.Context, runID uuid.UUID) ([]*models.CheckpointScan, error) {
	query := scanSelect + ` WHERE s.run_id = $1 ORDER BY s.scanned_at, c.sort_order`

	rows, err := s.tx.Query(ctx, query, runID)
	if err != nil {
		return nil, mapPostgresError(fmt.Errorf("failed to list scans: %w", err))
	}
	defer rows.Close()

	var scans []*models.CheckpointScan
	for rows.Next() {
		scan, err := scanCheckpointScan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint scan: %w", err)
		}
		scans = append(scans, scan)
	}

	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(fmt.Errorf("error iterating scans: %w", err))
	}

	return scans, nil
}

func scanCheckpointScan(row pgx.Row) (*models.CheckpointScan, error) {
	var scan models.CheckpointScan
	err := row.Scan(
		&scan.ScanID,
		&scan.CheckpointID,
		&scan.RunID,
		&scan.ScannedAt,
		&scan.CheckpointName,
		&scan.CheckpointCode,
		&scan.CheckpointOrder,
	)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}
