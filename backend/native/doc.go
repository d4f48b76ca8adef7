// Package native implements gpu.Backend on the pure Go WebGPU HAL from
// gogpu/wgpu.
//
// Generated WGSL is translated to SPIR-V with naga before it reaches the
// device, so a shader that fails validation surfaces as a CompileProgram
// error rather than a device error.
//
// Importing the package registers the backend under backend.Native:
//
//	import _ "github.com/gogpu/drawpipe/backend/native"
//
// The registered factory opens a standalone Vulkan device. Applications
// that already own a device share it with New or NewFromProvider; such a
// device is never destroyed by Release.
//
// A Backend is confined to one goroutine, the same one that owns the
// gpu.Context built on it.
package native
