package level

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/spectrum"
)

// Stats holds level statistics of a mono signal.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64 // mean
	RMS            float64
	RMS_dB         float64
	Max            float64
	Min            float64
	Peak           float64 // max(|max|, |min|)
	PeakPos        int
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	Energy         float64 // sum of squares
	ZeroCrossings  int
	Variance       float64 // population variance
	Skewness       float64
	Kurtosis       float64 // excess kurtosis
}

func emptyStats() Stats {
	return Stats{
		RMS_dB:         math.Inf(-1),
		Peak_dB:        math.Inf(-1),
		CrestFactor_dB: math.Inf(-1),
	}
}

// Calculate computes level statistics of signal.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return emptyStats()
	}

	maxVal := floats.Max(signal)
	minVal := floats.Min(signal)

	peakPos := floats.MaxIdx(signal)
	if -minVal > maxVal {
		peakPos = floats.MinIdx(signal)
	}
	peak := math.Max(math.Abs(maxVal), math.Abs(minVal))

	energy := floats.Dot(signal, signal)
	rms := math.Sqrt(energy / float64(n))

	mean, variance := stat.PopMeanVariance(signal, nil)

	var skewness, kurtosis float64
	if n > 3 && variance > 0 {
		skewness = stat.Skew(signal, nil)
		kurtosis = stat.ExKurtosis(signal, nil)
	}

	var crest, crestdB float64
	if rms > 0 {
		crest = peak / rms
		crestdB = core.LinearToDB(crest)
	}

	zc := 0
	for i := 1; i < n; i++ {
		if signal[i-1]*signal[i] < 0 {
			zc++
		}
	}

	return Stats{
		Length:         n,
		DC:             mean,
		RMS:            rms,
		RMS_dB:         core.LinearToDB(rms),
		Max:            maxVal,
		Min:            minVal,
		Peak:           peak,
		PeakPos:        peakPos,
		Peak_dB:        core.LinearToDB(peak),
		CrestFactor:    crest,
		CrestFactor_dB: crestdB,
		Energy:         energy,
		ZeroCrossings:  zc,
		Variance:       variance,
		Skewness:       skewness,
		Kurtosis:       kurtosis,
	}
}

// Peak returns the largest absolute sample value.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Max(math.Abs(floats.Max(signal)), math.Abs(floats.Min(signal)))
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(floats.Dot(signal, signal) / float64(len(signal)))
}

// Report summarises a buffer for display.
type Report struct {
	Stats

	SampleRate  int
	Seconds     float64
	DominantHz  float64
	HasDominant bool
}

// Analyze computes level statistics and the dominant frequency of b.
func Analyze(b core.Buffer) (Report, error) {
	if err := b.Validate(); err != nil {
		return Report{}, err
	}

	r := Report{
		Stats:      Calculate(b.Samples),
		SampleRate: b.SampleRate,
		Seconds:    b.Seconds(),
	}

	if len(b.Samples) == 0 {
		return r, nil
	}

	hz, err := spectrum.DominantFrequency(b.Samples, float64(b.SampleRate))
	if err != nil {
		return Report{}, err
	}

	r.DominantHz = hz
	r.HasDominant = hz > 0

	return r, nil
}
