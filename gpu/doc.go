// Package gpu implements the deferred draw pipeline.
//
// A draw is described by a [Pipeline]: one [GeometryProcessor], an ordered
// list of [FragmentProcessor] trees, a [BlendMode] and an output [Swizzle].
// Processors write WGSL into shader builders; the [ProgramBuilder] turns a
// pipeline into a single WGSL module and the [Backend] compiles it. Compiled
// programs live in the [ProgramCache], keyed by a [BytesKey] fingerprint of
// the pipeline's structure.
//
// GPU resources are reached through proxies. A [TextureProxy] or
// [RenderTargetProxy] only describes a resource until a task resolves it,
// at which point the backing is allocated or taken from the [ResourcePool].
//
// Work is recorded as [RenderTask] values on the [DrawingManager] and runs
// on Flush, strictly in submission order. A failing task is logged and
// skipped; it never affects its siblings or the caches.
//
// # Thread Safety
//
// A [Context] and everything it owns must be used from one goroutine at a
// time. Nothing in this package locks except the processor class registry,
// which is written during package initialization.
package gpu
