// Package backend keeps the process-wide set of GPU backends a drawpipe
// context can be opened on.
//
// # Registration
//
// Backend packages register a factory from init():
//
//	import _ "github.com/gogpu/drawpipe/backend/native"
//
// The default registry is created on first use and lives until Close is
// called on it, normally at process exit. Registering after Close fails
// with ErrRegistryClosed.
//
// # Selection
//
// Open returns a fresh gpu.Backend by name. An empty name picks the
// first registered backend in priority order:
//
//	b, err := backend.Default().Open("")
//	if err != nil {
//	    return err
//	}
//	defer b.Release()
//
// Tests use NewRegistry to avoid touching the process-wide state.
package backend
