package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/patrol/internal/server"
)

type AssignmentCmd struct {
	ClientFlags `embed:""`
}

func (a *AssignmentCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := a.client().Assignment(ctx)
	if err != nil {
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	globals.printf("Route: %s (shift %s)\n", resp.Route.Name, resp.Assignment.Shift)
	globals.printf("State: %s\n", resp.State)
	for _, cp := range resp.Route.Checkpoints {
		marker := " "
		if resp.NextExpected == cp.Order {
			marker = ">"
		}
		globals.printf(" %s %2d. %-30s %s\n", marker, cp.Order, cp.Name, cp.Code)
	}
	return nil
}

type StartCmd struct {
	ClientFlags `embed:""`
}

func (s *StartCmd) Run(ctx context.Context, globals *Globals) error {
	run, err := s.client().StartRun(ctx)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	globals.printf("Run %s started at %s\n", run.RunID, formatTime(run.StartTime))
	return nil
}

type ScanCmd struct {
	ClientFlags `embed:""`

	Code string `arg:"" help:"Checkpoint code read from the QR tag"`
}

func (s *ScanCmd) Run(ctx context.Context, globals *Globals) error {
	outcome, err := s.client().Scan(ctx, s.Code)
	if err != nil {
		return fmt.Errorf("failed to scan checkpoint: %w", err)
	}

	printScanOutcome(globals, outcome)
	return nil
}

func printScanOutcome(globals *Globals, outcome *server.ScanOutcomeResponse) {
	verb := "Scanned"
	if !outcome.Created {
		verb = "Already scanned"
	}
	globals.printf("%s %s (%d/%d) at %s\n", verb, outcome.Scan.CheckpointName,
		outcome.Scan.CheckpointOrder, outcome.Total, formatTime(outcome.Scan.ScannedAt))

	if outcome.Completed {
		globals.printf("Run %s completed\n", outcome.Run.RunID)
		return
	}
	globals.printf("Next checkpoint: %d\n", outcome.NextExpected)
}

type EndShiftCmd struct {
	ClientFlags `embed:""`
}

func (e *EndShiftCmd) Run(ctx context.Context, globals *Globals) error {
	resp, err := e.client().EndShift(ctx)
	if err != nil {
		return fmt.Errorf("failed to end shift: %w", err)
	}

	if resp.Run == nil {
		globals.printf("No active run\n")
		return nil
	}
	globals.printf("Run %s closed\n", resp.Run.RunID)
	return nil
}
