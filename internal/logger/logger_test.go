package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		dev       bool
		wantLevel zerolog.Level
	}{
		{name: "production", dev: false, wantLevel: zerolog.InfoLevel},
		{name: "dev", dev: true, wantLevel: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.dev)
			require.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("run_id", "r1").Msg("Run started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "Run started", entry["message"])
	require.Equal(t, "r1", entry["run_id"])
	require.Contains(t, entry, "time")
}

func TestSetGlobal(t *testing.T) {
	previous, previousDefault := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.DefaultContextLogger = previousDefault
	})

	var buf bytes.Buffer
	SetGlobal(New(&buf, false))

	zerolog.Ctx(context.Background()).Info().Msg("from context")
	log.Info().Msg("from global")

	require.Contains(t, buf.String(), "from context")
	require.Contains(t, buf.String(), "from global")
}
