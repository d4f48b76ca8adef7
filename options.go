package drawpipe

import (
	"log/slog"

	"github.com/gogpu/drawpipe/backend"
)

// Option configures NewContext.
//
// Example:
//
//	ctx, err := drawpipe.NewContext(
//	    drawpipe.WithMaxProgramCount(64),
//	    drawpipe.WithResourceBudget(64<<20),
//	)
type Option func(*options)

type options struct {
	config   Config
	logger   *slog.Logger
	registry *backend.Registry
}

func defaultOptions() options {
	return options{
		config:   DefaultConfig(),
		registry: backend.Default(),
	}
}

// WithConfig replaces the whole configuration, typically one returned by
// LoadConfig. Options after it still apply.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithBackend selects a backend by registry name.
func WithBackend(name string) Option {
	return func(o *options) {
		o.config.Backend = name
	}
}

// WithMaxProgramCount bounds the program cache.
func WithMaxProgramCount(n int) Option {
	return func(o *options) {
		o.config.MaxProgramCount = n
	}
}

// WithResourceBudget bounds the scratch resource pool in bytes.
func WithResourceBudget(bytes int64) Option {
	return func(o *options) {
		o.config.ResourceBudgetBytes = bytes
	}
}

// WithVerifyProgramKeys enables program key collision checks.
func WithVerifyProgramKeys(enabled bool) Option {
	return func(o *options) {
		o.config.VerifyProgramKeys = enabled
	}
}

// WithSyncSubmit makes Flush wait for the GPU.
func WithSyncSubmit(enabled bool) Option {
	return func(o *options) {
		o.config.SyncSubmit = enabled
	}
}

// WithLogger installs l with SetLogger before the context is created.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegistry opens the backend from r instead of backend.Default().
func WithRegistry(r *backend.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}
