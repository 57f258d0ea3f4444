package patrol

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// ScanResult is the outcome of recording a scan. Created is false when the checkpoint
// was already scanned in the run and Scan is the original record.
type ScanResult struct {
	Scan    *models.CheckpointScan
	Created bool
}

// RecordScan inserts the scan of cp in run exactly once. It must run in the same tx as
// ValidateScan.
func RecordScan(ctx context.Context, tx store.Tx, run *models.RouteRun, cp *models.Checkpoint, now time.Time) (*ScanResult, error) {
	scan := &models.CheckpointScan{
		ScanID:          uuid.Must(uuid.NewV7()),
		CheckpointID:    cp.CheckpointID,
		RunID:           run.RunID,
		ScannedAt:       now,
		CheckpointName:  cp.Name,
		CheckpointCode:  cp.Code,
		CheckpointOrder: cp.Order,
	}

	err := tx.CreateScan(ctx, scan)
	if err == nil {
		return &ScanResult{Scan: scan, Created: true}, nil
	}

	if !errors.Is(err, store.ErrScanAlreadyExists) {
		return nil, translate(err)
	}

	existing, err := tx.GetScan(ctx, run.RunID, cp.CheckpointID)
	if err != nil {
		return nil, translate(err)
	}

	return &ScanResult{Scan: existing, Created: false}, nil
}
