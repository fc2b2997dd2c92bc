// Package reverb provides the averaging-kernel reverb used at the end of the
// effect chain.
//
// The kernel is a rectangular window of decay*sampleRate taps weighted
// 1/sampleRate, so the wet signal is a running integral of the input over the
// decay window. It smears rather than rings and never adds more than
// decay times the input peak.
package reverb
