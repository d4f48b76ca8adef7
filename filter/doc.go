// Package filter provides GPU image filters built on the gpu package's
// deferred draw pipeline.
//
// A filter is created by a factory such as [Blur], which returns nil for
// parameters that would make the filter a no-op or invalid. Filters
// record their work as render tasks; nothing runs until the context is
// flushed.
//
// The Gaussian blur is separable: a horizontal pass into an intermediate
// target followed by a vertical pass into the result. Sigmas above
// maxBlurSigma are blurred at reduced resolution and scaled back up.
package filter
