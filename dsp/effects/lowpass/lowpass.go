// Package lowpass implements the spectral filter stage: a Butterworth
// low-pass built from cascaded biquad sections.
package lowpass

import (
	"errors"
	"fmt"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/filter/biquad"
	"github.com/cwbudde/slowverb/dsp/filter/design/pass"
)

const (
	// MinCutoffHz is the lowest cutoff the filter accepts.
	MinCutoffHz = 10.0

	// MaxCutoffRatio bounds the cutoff relative to the sample rate.
	MaxCutoffRatio = 0.49

	// DefaultOrder is a second-order (12 dB/octave) slope.
	DefaultOrder = 2

	// MinOrder and MaxOrder bound the accepted Butterworth order.
	MinOrder = 1
	MaxOrder = 8
)

var (
	// ErrInvalidCutoff is returned for NaN or infinite cutoffs.
	ErrInvalidCutoff = errors.New("lowpass: invalid cutoff")

	// ErrInvalidOrder is returned for orders outside [MinOrder, MaxOrder].
	ErrInvalidOrder = errors.New("lowpass: invalid order")

	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("lowpass: invalid sample rate")
)

// ClampCutoff limits fc to [MinCutoffHz, MaxCutoffRatio*sampleRate] and
// reports whether it had to move. Non-finite values are returned unchanged
// and unclamped; callers reject them separately.
func ClampCutoff(fc float64, sampleRate int) (applied float64, clamped bool) {
	if !core.IsFinite(fc) {
		return fc, false
	}
	hi := MaxCutoffRatio * float64(sampleRate)
	applied = core.Clamp(fc, MinCutoffHz, hi)
	return applied, applied != fc
}

// Filter is a Butterworth low-pass of a fixed cutoff and order.
type Filter struct {
	cutoff     float64
	order      int
	sampleRate int
	chain      *biquad.Chain
}

// Option configures a Filter.
type Option func(*Filter)

// WithOrder sets the Butterworth order. Default is DefaultOrder.
func WithOrder(order int) Option {
	return func(f *Filter) { f.order = order }
}

// New designs a low-pass at cutoffHz. The cutoff must already be inside the
// range ClampCutoff enforces.
func New(cutoffHz float64, sampleRate int, opts ...Option) (*Filter, error) {
	f := &Filter{cutoff: cutoffHz, order: DefaultOrder, sampleRate: sampleRate}
	for _, o := range opts {
		o(f)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if f.order < MinOrder || f.order > MaxOrder {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidOrder, f.order, MinOrder, MaxOrder)
	}
	if _, clamped := ClampCutoff(cutoffHz, sampleRate); !core.IsFinite(cutoffHz) || clamped {
		return nil, fmt.Errorf("%w: %v Hz not in [%v, %v]",
			ErrInvalidCutoff, cutoffHz, MinCutoffHz, MaxCutoffRatio*float64(sampleRate))
	}

	f.chain = biquad.NewChain(pass.ButterworthLP(cutoffHz, f.order, float64(sampleRate)))
	return f, nil
}

// Cutoff returns the -3 dB frequency in Hz.
func (f *Filter) Cutoff() float64 { return f.cutoff }

// Order returns the filter order.
func (f *Filter) Order() int { return f.chain.Order() }

// MagnitudeDB returns the filter's magnitude response at freqHz.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.chain.MagnitudeDB(freqHz, float64(f.sampleRate))
}

// Process filters input from a zero state and returns a new slice of the
// same length.
func (f *Filter) Process(input []float64) []float64 {
	return f.chain.Filter(input)
}
