package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/patrol/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil",
			err:  nil,
			want: nil,
		},
		{
			name: "duplicate username",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_username_key"},
			want: store.ErrAccountAlreadyExists,
		},
		{
			name: "second active run",
			err:  fmt.Errorf("insert run: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "route_runs_one_active"}),
			want: store.ErrRunAlreadyActive,
		},
		{
			name: "missing tenant",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "routes_tenant_fk"},
			want: store.ErrTenantNotFound,
		},
		{
			name: "serialization failure",
			err:  &pgconn.PgError{Code: pgerrcode.SerializationFailure},
			want: store.ErrTransient,
		},
		{
			name: "deadlock",
			err:  &pgconn.PgError{Code: pgerrcode.DeadlockDetected},
			want: store.ErrTransient,
		},
		{
			name: "too many connections",
			err:  &pgconn.PgError{Code: pgerrcode.TooManyConnections},
			want: store.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPostgresError(tt.err)
			if tt.want == nil {
				require.NoError(t, got)
				return
			}
			require.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("unknown unique constraint keeps original", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "something_else"}
		got := mapPostgresError(pgErr)

		var target *pgconn.PgError
		require.True(t, errors.As(got, &target))
		require.NotErrorIs(t, got, store.ErrTransient)
	})

	t.Run("plain error passes through", func(t *testing.T) {
		plain := errors.New("boom")
		require.Equal(t, plain, mapPostgresError(plain))
	})
}
