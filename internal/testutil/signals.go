package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/slowverb/dsp/core"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SineBuffer returns a mono buffer holding seconds of a sine at freqHz.
func SineBuffer(freqHz float64, sampleRate int, amplitude, seconds float64) core.Buffer {
	n := int(math.Round(seconds * float64(sampleRate)))
	return core.Buffer{
		Samples:    DeterministicSine(freqHz, float64(sampleRate), amplitude, n),
		SampleRate: sampleRate,
	}
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
