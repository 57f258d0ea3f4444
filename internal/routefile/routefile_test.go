package routefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Checkpoint
		wantErr string
	}{
		{
			name: "positional orders",
			input: `
name: Perimeter
checkpoints:
  - name: Gate
    code: A
  - name: Dock
    code: B
`,
			want: []Checkpoint{{Name: "Gate", Code: "A", Order: 1}, {Name: "Dock", Code: "B", Order: 2}},
		},
		{
			name: "explicit orders",
			input: `
name: Perimeter
checkpoints:
  - {name: Dock, code: B, order: 2}
  - {name: Gate, code: A, order: 1}
`,
			want: []Checkpoint{{Name: "Dock", Code: "B", Order: 2}, {Name: "Gate", Code: "A", Order: 1}},
		},
		{
			name: "mixed orders",
			input: `
name: Perimeter
checkpoints:
  - {name: Gate, code: A, order: 1}
  - {name: Dock, code: B}
`,
			wantErr: "every checkpoint or on none",
		},
		{
			name:    "missing name",
			input:   "checkpoints:\n  - {name: Gate, code: A}\n",
			wantErr: "route name is required",
		},
		{
			name:    "no checkpoints",
			input:   "name: Perimeter\n",
			wantErr: "at least one checkpoint",
		},
		{
			name:    "checkpoint without code",
			input:   "name: Perimeter\ncheckpoints:\n  - {name: Gate}\n",
			wantErr: "checkpoint 1 needs a name and a code",
		},
		{
			name:    "unknown key",
			input:   "name: Perimeter\ncolour: red\ncheckpoints:\n  - {name: Gate, code: A}\n",
			wantErr: "failed to decode",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: "empty route file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Perimeter", def.Name)
			require.Equal(t, tt.want, def.Checkpoints)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "route.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Lobby\ncheckpoints:\n  - {name: Desk, code: L1}\n"), 0o600))

	def, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Lobby", def.Name)
	require.Len(t, def.Checkpoints, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
