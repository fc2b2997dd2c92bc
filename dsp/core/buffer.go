package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSampleRate is returned when a buffer carries a non-positive sample rate.
var ErrInvalidSampleRate = errors.New("core: sample rate must be > 0")

// Buffer is a mono block of floating-point samples at a fixed sample rate.
//
// Stages treat a Buffer as read-only and return new buffers; the Samples
// slice of an input is never written to.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// NewBuffer returns a Buffer that owns a copy of samples.
func NewBuffer(samples []float64, sampleRate int) (Buffer, error) {
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	out := make([]float64, len(samples))
	copy(out, samples)

	return Buffer{Samples: out, SampleRate: sampleRate}, nil
}

// Validate checks the buffer invariants.
func (b Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	}

	return nil
}

// Len returns the number of samples.
func (b Buffer) Len() int { return len(b.Samples) }

// Duration returns the playback duration of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Seconds returns the playback duration in seconds.
func (b Buffer) Seconds() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Clone returns a deep copy of b.
func (b Buffer) Clone() Buffer {
	out := make([]float64, len(b.Samples))
	copy(out, b.Samples)

	return Buffer{Samples: out, SampleRate: b.SampleRate}
}

// WithSamples returns a buffer at the same sample rate holding samples.
// The slice is not copied.
func (b Buffer) WithSamples(samples []float64) Buffer {
	return Buffer{Samples: samples, SampleRate: b.SampleRate}
}

// FitLength returns a new slice of exactly n samples: in is truncated or
// zero-padded at the end.
func FitLength(in []float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	copy(out, in)

	return out
}
