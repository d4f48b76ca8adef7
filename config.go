package drawpipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/drawpipe/backend"
	"github.com/gogpu/drawpipe/gpu"
)

// Default configuration values.
const (
	DefaultMaxProgramCount     = 128
	DefaultResourceBudgetBytes = 256 << 20
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("drawpipe: invalid config")

// Config holds the settings of a context.
type Config struct {
	// Backend is the registry name of the GPU backend. Empty selects the
	// registry default.
	Backend string `toml:"backend" yaml:"backend"`

	// MaxProgramCount bounds the program cache; the least recently used
	// program is released past it.
	MaxProgramCount int `toml:"max_program_count" yaml:"max_program_count"`

	// ResourceBudgetBytes bounds the scratch resource pool.
	ResourceBudgetBytes int64 `toml:"resource_budget_bytes" yaml:"resource_budget_bytes"`

	// VerifyProgramKeys regenerates shader source on every program cache
	// hit and treats a mismatch as a key collision. Debug builds only.
	VerifyProgramKeys bool `toml:"verify_program_keys" yaml:"verify_program_keys"`

	// SyncSubmit makes Flush wait for the GPU.
	SyncSubmit bool `toml:"sync_submit" yaml:"sync_submit"`
}

// DefaultConfig returns the configuration NewContext starts from.
func DefaultConfig() Config {
	return Config{
		Backend:             backend.Native,
		MaxProgramCount:     DefaultMaxProgramCount,
		ResourceBudgetBytes: DefaultResourceBudgetBytes,
		SyncSubmit:          true,
	}
}

// Validate rejects non-positive limits.
func (c Config) Validate() error {
	if c.MaxProgramCount <= 0 {
		return fmt.Errorf("%w: max_program_count must be positive, got %d", ErrInvalidConfig, c.MaxProgramCount)
	}
	if c.ResourceBudgetBytes <= 0 {
		return fmt.Errorf("%w: resource_budget_bytes must be positive, got %d", ErrInvalidConfig, c.ResourceBudgetBytes)
	}
	return nil
}

func (c Config) contextOptions() gpu.ContextOptions {
	return gpu.ContextOptions{
		MaxProgramCount:     c.MaxProgramCount,
		ResourceBudgetBytes: c.ResourceBudgetBytes,
		VerifyProgramKeys:   c.VerifyProgramKeys,
		SyncSubmit:          c.SyncSubmit,
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file. Keys the
// file leaves out keep their DefaultConfig values; unknown keys are an
// error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("drawpipe: read config: %w", err)
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("drawpipe: decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and keeps the defaults.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("drawpipe: decode %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("drawpipe: unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
