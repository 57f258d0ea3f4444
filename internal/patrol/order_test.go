package patrol

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/models"
)

func testRoute(codes ...string) *models.Route {
	route := &models.Route{RouteID: uuid.New(), Name: "perimeter"}
	for i, code := range codes {
		route.Checkpoints = append(route.Checkpoints, models.Checkpoint{
			CheckpointID: uuid.New(),
			RouteID:      route.RouteID,
			Name:         "Checkpoint " + code,
			Code:         code,
			Order:        i + 1,
		})
	}
	return route
}

func scansOf(route *models.Route, codes ...string) []*models.CheckpointScan {
	var scans []*models.CheckpointScan
	for _, code := range codes {
		cp, _ := route.CheckpointByCode(code)
		scans = append(scans, &models.CheckpointScan{
			ScanID:          uuid.New(),
			CheckpointID:    cp.CheckpointID,
			CheckpointCode:  cp.Code,
			CheckpointOrder: cp.Order,
		})
	}
	return scans
}

func TestNextExpectedOrder(t *testing.T) {
	route := testRoute("A", "B", "C")

	tests := []struct {
		name    string
		scanned []string
		want    int
	}{
		{name: "fresh run", want: 1},
		{name: "one scanned", scanned: []string{"A"}, want: 2},
		{name: "two scanned", scanned: []string{"A", "B"}, want: 3},
		{name: "all scanned", scanned: []string{"A", "B", "C"}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NextExpectedOrder(scansOf(route, tt.scanned...)))
		})
	}
}

func TestValidateScan(t *testing.T) {
	route := testRoute("A", "B", "C")

	tests := []struct {
		name     string
		scanned  []string
		code     string
		wantKind Kind
		expected int
		got      int
	}{
		{name: "first checkpoint", code: "A"},
		{name: "next checkpoint", scanned: []string{"A"}, code: "B"},
		{name: "already scanned", scanned: []string{"A", "B"}, code: "A"},
		{name: "skip ahead", code: "B", wantKind: KindWrongOrder, expected: 1, got: 2},
		{name: "skip two", scanned: []string{"A"}, code: "C", wantKind: KindWrongOrder, expected: 2, got: 3},
		{name: "unknown code", scanned: []string{"A"}, code: "Z", wantKind: KindUnknownCode},
		{name: "codes are case sensitive", code: "a", wantKind: KindUnknownCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp, err := ValidateScan(route, scansOf(route, tt.scanned...), tt.code)
			if tt.wantKind == "" {
				require.NoError(t, err)
				require.Equal(t, tt.code, cp.Code)
				return
			}

			requireKind(t, err, tt.wantKind)
			if tt.wantKind == KindWrongOrder {
				var pe *Error
				require.ErrorAs(t, err, &pe)
				require.Equal(t, tt.expected, pe.Expected)
				require.Equal(t, tt.got, pe.Got)
			}
		})
	}
}

func TestValidateCheckpoints(t *testing.T) {
	cp := func(code string, order int) models.Checkpoint {
		return models.Checkpoint{Name: code, Code: code, Order: order}
	}

	tests := []struct {
		name    string
		cps     []models.Checkpoint
		wantErr bool
	}{
		{name: "dense", cps: []models.Checkpoint{cp("A", 1), cp("B", 2), cp("C", 3)}},
		{name: "unsorted but dense", cps: []models.Checkpoint{cp("C", 3), cp("A", 1), cp("B", 2)}},
		{name: "empty", wantErr: true},
		{name: "gap", cps: []models.Checkpoint{cp("A", 1), cp("B", 3)}, wantErr: true},
		{name: "zero order", cps: []models.Checkpoint{cp("A", 0)}, wantErr: true},
		{name: "duplicate order", cps: []models.Checkpoint{cp("A", 1), cp("B", 1)}, wantErr: true},
		{name: "duplicate code", cps: []models.Checkpoint{cp("A", 1), cp("A", 2)}, wantErr: true},
		{name: "missing code", cps: []models.Checkpoint{cp("", 1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckpoints(tt.cps)
			if tt.wantErr {
				requireKind(t, err, KindInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}
