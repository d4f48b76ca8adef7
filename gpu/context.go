package gpu

import "fmt"

// ContextOptions configures a Context. Zero values select defaults.
type ContextOptions struct {
	// MaxProgramCount bounds the program cache.
	MaxProgramCount int
	// ResourceBudgetBytes bounds the resource pool.
	ResourceBudgetBytes int64
	// VerifyProgramKeys makes the program cache regenerate the source of
	// every hit and compare it with the cached program's.
	VerifyProgramKeys bool
	// SyncSubmit makes Flush wait for the GPU to finish.
	SyncSubmit bool
}

// Context owns the program cache, resource pool and task queue of one
// backend device. It must be driven from one goroutine at a time.
type Context struct {
	backend Backend
	caps    *Caps
	opts    ContextOptions

	programs *ProgramCache
	pool     *ResourcePool
	proxies  *ProxyProvider
	drawing  *DrawingManager

	released bool
}

// NewContext creates a context on backend.
func NewContext(backend Backend, opts ContextOptions) (*Context, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	caps := backend.Caps()
	if caps == nil {
		caps = DefaultCaps()
	}
	c := &Context{backend: backend, caps: caps, opts: opts}
	c.programs = newProgramCache(c, opts.MaxProgramCount, opts.VerifyProgramKeys)
	c.pool = newResourcePool(backend, caps, opts.ResourceBudgetBytes)
	c.proxies = &ProxyProvider{ctx: c}
	c.drawing = newDrawingManager(c)
	slogger().Debug("gpu: context created", "backend", backend.Name(),
		"maxPrograms", c.programs.maxPrograms, "budget", c.pool.budget)
	return c, nil
}

// Backend returns the backend the context renders with.
func (c *Context) Backend() Backend { return c.backend }

// Caps returns the backend capabilities.
func (c *Context) Caps() *Caps { return c.caps }

// ProgramCache returns the context's program cache.
func (c *Context) ProgramCache() *ProgramCache { return c.programs }

// ResourcePool returns the context's resource pool.
func (c *Context) ResourcePool() *ResourcePool { return c.pool }

// ProxyProvider returns the proxy factory.
func (c *Context) ProxyProvider() *ProxyProvider { return c.proxies }

// DrawingManager returns the task queue.
func (c *Context) DrawingManager() *DrawingManager { return c.drawing }

// Released reports whether Release or Abandon was called.
func (c *Context) Released() bool { return c.released }

// Flush executes every queued task and submits the recorded work.
func (c *Context) Flush() (FlushResult, error) {
	if c.released {
		return FlushResult{}, ErrContextReleased
	}
	return c.drawing.Flush()
}

// ReadPixels flushes pending work and copies a region of target into
// dst, converting to info's format.
func (c *Context) ReadPixels(target *RenderTargetProxy, info ImageInfo, dst []byte, x, y int) error {
	if c.released {
		return ErrContextReleased
	}
	if _, err := c.Flush(); err != nil {
		return fmt.Errorf("flush before read: %w", err)
	}
	return readPixels(c, target, info, dst, x, y)
}

// Release frees every cached program and idle resource, then the
// backend. The device must still be alive. Queued tasks are dropped.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.drawing.discardAll()
	c.programs.releaseAll(true)
	c.pool.releaseAll(true)
	c.released = true
	c.backend.Release()
}

// Abandon drops every cache without touching the device, for use after
// the device was lost.
func (c *Context) Abandon() {
	if c.released {
		return
	}
	c.drawing.discardAll()
	c.programs.releaseAll(false)
	c.pool.releaseAll(false)
	c.released = true
}
