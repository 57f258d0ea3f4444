package patrol

import (
	"slices"

	"github.com/wolfeidau/patrol/internal/models"
)

// NextExpectedOrder returns the order of the checkpoint that must be scanned next:
// 1 for a fresh run, otherwise one past the highest order scanned so far. Routes are
// validated dense 1..N at creation, so under strict ordering this equals the order of
// the most recent scan plus one.
func NextExpectedOrder(scans []*models.CheckpointScan) int {
	highest := 0
	for _, s := range scans {
		highest = max(highest, s.CheckpointOrder)
	}
	return highest + 1
}

// ValidateScan checks a presented code against the route and the scans already in the
// run. It never mutates anything.
//
// A code already scanned in the run is returned without error so the recorder can
// answer with the existing scan.
func ValidateScan(route *models.Route, scans []*models.CheckpointScan, code string) (*models.Checkpoint, error) {
	cp, ok := route.CheckpointByCode(code)
	if !ok {
		return nil, newError(KindUnknownCode, "code %q is not on route %s", code, route.Name)
	}

	if slices.ContainsFunc(scans, func(s *models.CheckpointScan) bool { return s.CheckpointID == cp.CheckpointID }) {
		return cp, nil
	}

	if expected := NextExpectedOrder(scans); cp.Order != expected {
		return nil, wrongOrder(expected, cp.Order)
	}

	return cp, nil
}

// ValidateCheckpoints checks that a route's checkpoints have non-empty unique codes and
// orders forming the dense sequence 1..N.
func ValidateCheckpoints(cps []models.Checkpoint) error {
	if len(cps) == 0 {
		return newError(KindInvalid, "route needs at least one checkpoint")
	}

	seenOrder := make(map[int]bool, len(cps))
	seenCode := make(map[string]bool, len(cps))
	for _, cp := range cps {
		if cp.Code == "" {
			return newError(KindInvalid, "checkpoint %q has no code", cp.Name)
		}
		if seenCode[cp.Code] {
			return newError(KindInvalid, "duplicate checkpoint code %q", cp.Code)
		}
		seenCode[cp.Code] = true

		if cp.Order < 1 || cp.Order > len(cps) {
			return newError(KindInvalid, "checkpoint order %d outside 1..%d", cp.Order, len(cps))
		}
		if seenOrder[cp.Order] {
			return newError(KindInvalid, "duplicate checkpoint order %d", cp.Order)
		}
		seenOrder[cp.Order] = true
	}

	return nil
}
