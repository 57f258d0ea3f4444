package patrol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/store"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "transient", err: fmt.Errorf("%w: serialization failure", store.ErrTransient), want: KindTransient},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTransient},
		{name: "canceled", err: context.Canceled, want: KindTransient},
		{name: "run already active", err: store.ErrRunAlreadyActive, want: KindAlreadyActive},
		{name: "tenant not found", err: store.ErrTenantNotFound, want: KindNotFound},
		{name: "assignment not found", err: store.ErrAssignmentNotFound, want: KindNotFound},
		{name: "username taken", err: store.ErrAccountAlreadyExists, want: KindConflict},
		{name: "code in use", err: store.ErrCheckpointCodeExists, want: KindConflict},
		{name: "unknown", err: errors.New("boom"), want: KindInternal},
		{name: "patrol error passes through", err: wrongOrder(1, 3), want: KindWrongOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err)
			require.Equal(t, tt.want, KindOf(err))
			if tt.want != KindWrongOrder {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}

	require.NoError(t, translate(nil))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("scan: %w", wrongOrder(2, 4))

	require.ErrorIs(t, err, ErrWrongOrder)
	require.NotErrorIs(t, err, ErrUnknownCode)
	require.Equal(t, KindWrongOrder, KindOf(err))
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
	require.Contains(t, err.Error(), "expected checkpoint 2, got 4")
}
