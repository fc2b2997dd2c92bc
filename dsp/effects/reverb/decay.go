package reverb

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/slowverb/dsp/conv"
	"github.com/cwbudde/slowverb/dsp/core"
)

var (
	// ErrInvalidDecay is returned for non-finite or non-positive decay times.
	ErrInvalidDecay = errors.New("reverb: invalid decay time")

	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("reverb: invalid sample rate")

	// ErrInvalidMix is returned for non-finite wet or dry levels.
	ErrInvalidMix = errors.New("reverb: invalid wet/dry level")
)

// Kernel returns the averaging kernel for a decay of decaySeconds:
// round(sampleRate*decaySeconds) taps, each 1/sampleRate. The taps sum to
// the decay time in seconds. Invalid arguments yield an empty kernel.
func Kernel(sampleRate int, decaySeconds float64) []float64 {
	if sampleRate <= 0 || !core.IsFinitePositive(decaySeconds) {
		return []float64{}
	}

	n := int(math.Round(float64(sampleRate) * decaySeconds))
	kernel := make([]float64, n)
	w := 1 / float64(sampleRate)
	for i := range kernel {
		kernel[i] = w
	}

	return kernel
}

// DecayReverb is a send-style reverb built from a flat averaging kernel.
//
// The wet signal is the causal part of input convolved with the kernel; it
// is summed onto the dry signal and the tail beyond the input is dropped:
//
//	out[i] = dry*x[i] + wet*sum_{j<=i, i-j<K} x[j]/sampleRate
type DecayReverb struct {
	sampleRate int
	decay      float64
	kernel     []float64
	wet        float64
	dry        float64
}

// NewDecayReverb creates a reverb with unity wet and dry levels.
func NewDecayReverb(sampleRate int, decaySeconds float64) (*DecayReverb, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if !core.IsFinitePositive(decaySeconds) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDecay, decaySeconds)
	}

	return &DecayReverb{
		sampleRate: sampleRate,
		decay:      decaySeconds,
		kernel:     Kernel(sampleRate, decaySeconds),
		wet:        1,
		dry:        1,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (r *DecayReverb) SampleRate() int { return r.sampleRate }

// Decay returns the decay time in seconds.
func (r *DecayReverb) Decay() float64 { return r.decay }

// KernelLen returns the number of kernel taps.
func (r *DecayReverb) KernelLen() int { return len(r.kernel) }

// Gain returns the kernel's DC gain, which equals the realised decay time.
func (r *DecayReverb) Gain() float64 {
	if len(r.kernel) == 0 {
		return 0
	}

	return f64.Sum(r.kernel)
}

// Wet returns the wet level.
func (r *DecayReverb) Wet() float64 { return r.wet }

// Dry returns the dry level.
func (r *DecayReverb) Dry() float64 { return r.dry }

// SetWetDry sets the wet and dry mix levels.
func (r *DecayReverb) SetWetDry(wet, dry float64) error {
	if !core.IsFinite(wet) || !core.IsFinite(dry) {
		return fmt.Errorf("%w: wet=%v dry=%v", ErrInvalidMix, wet, dry)
	}

	r.wet = wet
	r.dry = dry

	return nil
}

// Process returns dry*input plus the wet signal, with len(input) samples.
// A kernel with no taps returns a copy of the dry signal.
func (r *DecayReverb) Process(input []float64) ([]float64, error) {
	out := make([]float64, len(input))
	if len(input) == 0 {
		return out, nil
	}

	if r.dry == 1 {
		copy(out, input)
	} else {
		f64.Scale(out, input, r.dry)
	}

	if len(r.kernel) == 0 || r.wet == 0 {
		return out, nil
	}

	wet, err := conv.ConvolveMode(input, r.kernel, conv.ModeHead)
	if err != nil {
		return nil, fmt.Errorf("reverb: convolution failed: %w", err)
	}

	if r.wet != 1 {
		f64.Scale(wet, wet, r.wet)
	}
	for i, v := range wet {
		out[i] += v
	}

	return out, nil
}

// MaxGain returns the bound |dry| + |wet|*Gain on the ratio between output
// and input peak levels.
func (r *DecayReverb) MaxGain() float64 {
	return math.Abs(r.dry) + math.Abs(r.wet)*r.Gain()
}
