package drawpipe

import (
	"fmt"

	"github.com/gogpu/drawpipe/gpu"
)

// NewContext opens the configured backend and creates a gpu.Context on
// it. Releasing the context releases the backend.
func NewContext(opts ...Option) (*gpu.Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	b, err := o.registry.Open(o.config.Backend)
	if err != nil {
		return nil, fmt.Errorf("drawpipe: %w", err)
	}
	ctx, err := gpu.NewContext(b, o.config.contextOptions())
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("drawpipe: %w", err)
	}
	Logger().Info("drawpipe: context created", "backend", b.Name(),
		"maxPrograms", o.config.MaxProgramCount, "budget", o.config.ResourceBudgetBytes)
	return ctx, nil
}
