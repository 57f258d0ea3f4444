package commands

import (
	"context"
	"fmt"
)

type ReportCmd struct {
	ClientFlags `embed:""`

	Guard string `help:"Guard account ID" required:""`
	Date  string `help:"Report day as YYYY-MM-DD, defaults to today on the server"`
}

func (r *ReportCmd) Run(ctx context.Context, globals *Globals) error {
	guardID, err := parseID("guard", r.Guard)
	if err != nil {
		return err
	}

	report, err := r.client().DailyReport(ctx, guardID, r.Date)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	globals.printf("Guard %s on %s: %d run(s)\n", report.GuardUsername, report.Date, len(report.Runs))
	for _, rr := range report.Runs {
		status := "in progress"
		switch {
		case rr.Run.Completed:
			status = "completed"
		case rr.Run.EndTime != nil:
			status = "ended early"
		}

		globals.printf("\nRun %s started %s, %s\n", rr.Run.RunID, formatTime(rr.Run.StartTime), status)
		for _, scan := range rr.Scans {
			globals.printf("  %2d. %-30s %s\n", scan.CheckpointOrder, scan.CheckpointName, formatTime(scan.ScannedAt))
		}
		for _, inc := range rr.Incidents {
			globals.printf("  incident at %s: %s\n", formatTime(inc.Timestamp), inc.Description)
		}
		for _, occ := range rr.Occurrences {
			globals.printf("  %s occurrence at %s\n", occ.Type, formatTime(occ.Timestamp))
		}
	}
	return nil
}
