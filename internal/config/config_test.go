package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".tdce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Config
	}{
		{
			name:    "empty file",
			content: "",
			want:    Default(),
		},
		{
			name: "all fields",
			content: `name: custom
max_iterations: 100
max_passes: 3
order: reverse
trace: true
workers: 2
`,
			want: Config{
				Name:          "custom",
				MaxIterations: 100,
				MaxPasses:     3,
				Order:         OrderReverse,
				Trace:         true,
				Workers:       2,
			},
		},
		{
			name:    "partial file keeps defaults",
			content: "order: forward\n",
			want: Config{
				Name:      "tdce",
				MaxPasses: defaultMaxPasses,
				Order:     OrderForward,
				Workers:   runtime.NumCPU(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "rules: {}\n"},
		{"unknown order", "order: sideways\n"},
		{"negative passes", "max_passes: -1\n"},
		{"negative iterations", "max_iterations: -5\n"},
		{"negative workers", "workers: -2\n"},
		{"wrong type", "trace: maybe\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Trace = true
	cfg.MaxIterations = 9
	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
