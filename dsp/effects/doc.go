// Package effects groups the offline effect stages used by the slowed + reverb
// chain. Each subpackage operates on whole mono buffers and never mutates
// its input:
//   - github.com/cwbudde/slowverb/dsp/effects/tempo
//   - github.com/cwbudde/slowverb/dsp/effects/lowpass
//   - github.com/cwbudde/slowverb/dsp/effects/pitch
//   - github.com/cwbudde/slowverb/dsp/effects/reverb
package effects
