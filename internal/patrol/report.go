package patrol

import (
	"context"
	"time"

	"github.com/wolfeidau/patrol/internal/models"
	"github.com/wolfeidau/patrol/internal/store"
)

// DateLayout is the calendar date format of daily reports.
const DateLayout = "2006-01-02"

// Report is the daily rollup of one guard's runs.
type Report struct {
	GuardID       string
	GuardUsername string
	Date          string
	Runs          []RunReport
}

// RunReport is one run with everything recorded during it.
type RunReport struct {
	Run         *models.RouteRun
	Scans       []*models.CheckpointScan
	Incidents   []*models.Incident
	Occurrences []*models.Occurrence
}

// DailyReport collects the guard's runs that started on the calendar day of date in
// loc, in start order, with their scans ordered by scan time and their logs ordered by
// timestamp.
func DailyReport(ctx context.Context, tx store.Tx, guard *models.Account, date time.Time, loc *time.Location) (*Report, error) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	runs, err := tx.ListRunsByGuard(ctx, guard.AccountID, from, to)
	if err != nil {
		return nil, translate(err)
	}

	report := &Report{
		GuardID:       guard.AccountID.String(),
		GuardUsername: guard.Username,
		Date:          from.Format(DateLayout),
		Runs:          make([]RunReport, 0, len(runs)),
	}

	for _, run := range runs {
		rr := RunReport{Run: run}

		if rr.Scans, err = tx.ListScans(ctx, run.RunID); err != nil {
			return nil, translate(err)
		}
		if rr.Incidents, err = tx.ListIncidents(ctx, run.RunID); err != nil {
			return nil, translate(err)
		}
		if rr.Occurrences, err = tx.ListOccurrences(ctx, run.RunID); err != nil {
			return nil, translate(err)
		}

		report.Runs = append(report.Runs, rr)
	}

	return report, nil
}
