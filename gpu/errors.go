package gpu

import "errors"

var (
	// ErrNilBackend is returned by NewContext when no backend is given.
	ErrNilBackend = errors.New("gpu: backend is nil")

	// ErrContextReleased is returned when a released context is used.
	ErrContextReleased = errors.New("gpu: context released")

	// ErrInvalidDimensions is returned for zero, negative or oversized
	// resource dimensions.
	ErrInvalidDimensions = errors.New("gpu: invalid dimensions")

	// ErrTargetUnavailable is returned when a task's render target proxy
	// cannot be resolved.
	ErrTargetUnavailable = errors.New("gpu: render target unavailable")

	// ErrTextureUnavailable is returned when an input texture proxy cannot
	// be resolved.
	ErrTextureUnavailable = errors.New("gpu: texture unavailable")

	// ErrProgramUnavailable is returned when the program cache yields no
	// program for a draw.
	ErrProgramUnavailable = errors.New("gpu: program unavailable")

	// ErrDuplicateUniform is reported by the program builder when two
	// uniforms resolve to the same name.
	ErrDuplicateUniform = errors.New("gpu: duplicate uniform name")

	// ErrSharedProcessor is reported for a pipeline in which one fragment
	// processor instance appears more than once.
	ErrSharedProcessor = errors.New("gpu: fragment processor used twice in one pipeline")

	// ErrTaskNotQueued is returned when a task that is not in the queued
	// state is added or executed again.
	ErrTaskNotQueued = errors.New("gpu: task is not queued")

	// ErrResourceBudgetExceeded is returned when the resource pool cannot
	// fit a new allocation even after purging idle resources.
	ErrResourceBudgetExceeded = errors.New("gpu: resource budget exceeded")

	// ErrRenderPassActive is returned by RenderPass.Begin when a pass is
	// already open.
	ErrRenderPassActive = errors.New("gpu: render pass already active")

	// ErrRenderPassInactive is returned when drawing outside Begin/End.
	ErrRenderPassInactive = errors.New("gpu: render pass not active")
)
