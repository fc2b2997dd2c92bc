// Package effectchain runs the "slowed + reverb" effect chain.
//
// An [Engine] validates [Params] once, builds a fresh [Stage] per step from
// its [Registry] and runs them in order:
//
//	tempo -> lowpass -> [intermediate] -> pitch -> reverb
//
// Failures are reported as [*Error] values classified by [Kind]; clamped
// parameters and empty input come back as [Warning]s on a successful
// [Result].
package effectchain
