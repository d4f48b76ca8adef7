package backend

import (
	"errors"

	"github.com/gogpu/drawpipe/gpu"
)

// Common registry errors.
var (
	// ErrBackendNotRegistered is returned by Open for an unknown name, or
	// for an empty name when nothing is registered.
	ErrBackendNotRegistered = errors.New("backend: not registered")

	// ErrRegistryClosed is returned once Close has been called.
	ErrRegistryClosed = errors.New("backend: registry closed")

	// ErrDuplicateBackend is returned when a name is registered twice.
	ErrDuplicateBackend = errors.New("backend: already registered")
)

// Backend names known to the registry priority list.
const (
	// Native is the pure Go WebGPU backend in backend/native.
	Native = "native"
)

// Factory opens a new backend instance. Each call must return an
// independent device that the caller releases.
type Factory func() (gpu.Backend, error)
