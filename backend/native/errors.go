package native

import "errors"

var (
	// ErrNoAdapter is returned by Open when the instance reports no GPU.
	ErrNoAdapter = errors.New("native: no GPU adapter available")

	// ErrBackendReleased is returned after Release.
	ErrBackendReleased = errors.New("native: backend released")

	// ErrUnsupportedFormat is returned for pixel formats the device
	// cannot store.
	ErrUnsupportedFormat = errors.New("native: unsupported pixel format")

	// ErrUnsupportedAttribute is returned when a vertex attribute type has
	// no vertex format.
	ErrUnsupportedAttribute = errors.New("native: unsupported vertex attribute")

	// ErrForeignResource is returned when a texture, target or program
	// was created by another backend.
	ErrForeignResource = errors.New("native: resource belongs to another backend")

	// ErrNotReadable is returned by ReadPixels for targets without a
	// copyable texture, such as wrapped surface views.
	ErrNotReadable = errors.New("native: render target is not readable")

	// ErrGPUTimeout is returned when a fence does not signal in time.
	ErrGPUTimeout = errors.New("native: timed out waiting for GPU")

	// ErrPassEnded is returned when a command pass is used after End.
	ErrPassEnded = errors.New("native: command pass already ended")
)
