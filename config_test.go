package drawpipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "native", cfg.Backend)
	assert.Equal(t, 128, cfg.MaxProgramCount)
	assert.EqualValues(t, 256<<20, cfg.ResourceBudgetBytes)
	assert.False(t, cfg.VerifyProgramKeys)
	assert.True(t, cfg.SyncSubmit)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero programs", func(c *Config) { c.MaxProgramCount = 0 }},
		{"negative programs", func(c *Config) { c.MaxProgramCount = -1 }},
		{"zero budget", func(c *Config) { c.ResourceBudgetBytes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "drawpipe.toml", `
backend = "test"
max_program_count = 16
resource_budget_bytes = 1048576
verify_program_keys = true
`},
		{"yaml", "drawpipe.yaml", `
backend: test
max_program_count: 16
resource_budget_bytes: 1048576
verify_program_keys: true
`},
		{"yml", "drawpipe.YML", `
backend: test
max_program_count: 16
resource_budget_bytes: 1048576
verify_program_keys: true
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, Config{
				Backend:             "test",
				MaxProgramCount:     16,
				ResourceBudgetBytes: 1 << 20,
				VerifyProgramKeys:   true,
				SyncSubmit:          true, // not in the file, keeps its default
			}, cfg)
		})
	}
}

func TestLoadConfigEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "drawpipe.json", `{}`},
		{"unknown toml key", "drawpipe.toml", "colour = 1\n"},
		{"unknown yaml key", "drawpipe.yaml", "colour: 1\n"},
		{"malformed toml", "drawpipe.toml", "max_program_count = \n"},
		{"invalid values", "drawpipe.toml", "max_program_count = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
