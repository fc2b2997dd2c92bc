package spectrum

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/window"
)

// MaxAnalysisLength caps the number of samples DominantFrequency looks at.
// Longer inputs are analysed over their centred MaxAnalysisLength samples.
const MaxAnalysisLength = 1 << 20

var (
	// ErrEmptyInput is returned when there are no samples to analyse.
	ErrEmptyInput = errors.New("spectrum: empty input")

	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("spectrum: invalid sample rate")
)

// MagnitudeSpectrum returns the one-sided magnitude spectrum of a
// Hann-windowed, zero-padded copy of samples, together with the FFT size
// used. Bin k corresponds to k*sampleRate/fftSize Hz.
func MagnitudeSpectrum(samples []float64) (mag []float64, fftSize int, err error) {
	if len(samples) == 0 {
		return nil, 0, ErrEmptyInput
	}

	fftSize = nextPowerOf2(len(samples))
	frame := make([]float64, fftSize)
	copy(frame, samples)
	window.Apply(window.TypeHann, frame[:len(samples)])

	coeffs := fourier.NewFFT(fftSize).Coefficients(nil, frame)
	return Magnitude(coeffs), fftSize, nil
}

// DominantFrequency estimates the frequency (Hz) of the strongest spectral
// peak in samples, excluding DC. The peak bin is refined with parabolic
// interpolation on log magnitudes, so a pure tone is resolved well below the
// bin spacing.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyInput
	}
	if !core.IsFinitePositive(sampleRate) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if len(samples) > MaxAnalysisLength {
		start := (len(samples) - MaxAnalysisLength) / 2
		samples = samples[start : start+MaxAnalysisLength]
	}

	mag, fftSize, err := MagnitudeSpectrum(samples)
	if err != nil {
		return 0, err
	}
	if len(mag) < 3 {
		return 0, nil
	}

	k := floats.MaxIdx(mag[1:]) + 1
	if mag[k] == 0 {
		return 0, nil
	}

	offset := 0.0
	if k < len(mag)-1 {
		offset = parabolicOffset(mag[k-1], mag[k], mag[k+1])
	}

	return (float64(k) + offset) * sampleRate / float64(fftSize), nil
}

// parabolicOffset returns the fractional bin offset of the vertex of the
// parabola through three log-magnitude points centred on a local maximum.
func parabolicOffset(left, centre, right float64) float64 {
	const floor = 1e-300
	a := math.Log(max(left, floor))
	b := math.Log(max(centre, floor))
	c := math.Log(max(right, floor))

	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	return core.Clamp(0.5*(a-c)/den, -0.5, 0.5)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
