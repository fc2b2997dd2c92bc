package tempo

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/cwbudde/slowverb/dsp/core"
)

const (
	// Music preset: long sequences keep several beat cycles inside the
	// correlation window.
	defaultSequenceMs = 82.0
	defaultOverlapMs  = 10.0
	defaultSearchMs   = 28.0

	// MinSpeed and MaxSpeed bound the accepted speed factor.
	MinSpeed = 0.05
	MaxSpeed = 20.0

	minSequenceMs = 20.0
	maxSequenceMs = 120.0
	minOverlapMs  = 4.0
	maxOverlapMs  = 60.0
	minSearchMs   = 2.0
	maxSearchMs   = 40.0

	identityEps = 1e-12
	tiny        = 1e-12
)

var (
	// ErrInvalidSpeed is returned for speed factors that are not finite or
	// lie outside [MinSpeed, MaxSpeed].
	ErrInvalidSpeed = errors.New("tempo: invalid speed factor")

	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("tempo: invalid sample rate")

	// ErrInvalidWindow is returned when sequence, overlap or search lengths
	// are out of range or inconsistent.
	ErrInvalidWindow = errors.New("tempo: invalid window configuration")
)

// Stretcher performs WSOLA time scaling of mono buffers.
//
// Speed factor:
//   - 1.0 = unchanged
//   - 0.8 = 25% longer (slowed)
//   - 2.0 = half the duration
type Stretcher struct {
	sampleRate float64
	speed      float64

	sequenceMs float64
	overlapMs  float64
	searchMs   float64

	sequenceLen int
	overlapLen  int
	searchLen   int
	stepOut     int

	fadeIn  []float64
	fadeOut []float64
}

// NewStretcher constructs a Stretcher with music-tuned window defaults and
// speed 1.
func NewStretcher(sampleRate float64) (*Stretcher, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}
	s := &Stretcher{
		sampleRate: sampleRate,
		speed:      1,
		sequenceMs: defaultSequenceMs,
		overlapMs:  defaultOverlapMs,
		searchMs:   defaultSearchMs,
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Stretcher) SampleRate() float64 { return s.sampleRate }

// Speed returns the current speed factor.
func (s *Stretcher) Speed() float64 { return s.speed }

// Sequence returns the sequence length in milliseconds.
func (s *Stretcher) Sequence() float64 { return s.sequenceMs }

// Overlap returns the overlap length in milliseconds.
func (s *Stretcher) Overlap() float64 { return s.overlapMs }

// Search returns the seek window radius in milliseconds.
func (s *Stretcher) Search() float64 { return s.searchMs }

// SetSpeed updates the speed factor.
func (s *Stretcher) SetSpeed(speed float64) error {
	if !core.IsFinitePositive(speed) || speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidSpeed, speed, MinSpeed, MaxSpeed)
	}
	s.speed = speed
	return nil
}

// SetSequence updates the sequence length in milliseconds.
func (s *Stretcher) SetSequence(ms float64) error {
	return s.setWindow(&s.sequenceMs, ms, minSequenceMs, maxSequenceMs, "sequence")
}

// SetOverlap updates the cross-fade length in milliseconds.
func (s *Stretcher) SetOverlap(ms float64) error {
	return s.setWindow(&s.overlapMs, ms, minOverlapMs, maxOverlapMs, "overlap")
}

// SetSearch updates the seek window radius in milliseconds.
func (s *Stretcher) SetSearch(ms float64) error {
	return s.setWindow(&s.searchMs, ms, minSearchMs, maxSearchMs, "search")
}

func (s *Stretcher) setWindow(field *float64, ms, lo, hi float64, name string) error {
	if !core.IsFinite(ms) || ms < lo || ms > hi {
		return fmt.Errorf("%w: %s must be in [%v, %v] ms, got %v", ErrInvalidWindow, name, lo, hi, ms)
	}
	old := *field
	*field = ms
	if err := s.rebuild(); err != nil {
		*field = old
		_ = s.rebuild()
		return err
	}
	return nil
}

// OutputLength returns the number of samples Process yields for an input of
// n samples at the current speed.
func (s *Stretcher) OutputLength(n int) int {
	if n <= 0 {
		return 0
	}
	return max(int(math.Round(float64(n)/s.speed)), 1)
}

// Process time-scales input and returns a new slice of OutputLength(len(input))
// samples. The input is not modified.
func (s *Stretcher) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return []float64{}, nil
	}
	if math.Abs(s.speed-1) <= identityEps {
		out := make([]float64, len(input))
		copy(out, input)
		return out, nil
	}

	return s.stretch(input, s.OutputLength(len(input))), nil
}

func (s *Stretcher) rebuild() error {
	if s.overlapMs >= s.sequenceMs {
		return fmt.Errorf("%w: overlap %v ms must be smaller than sequence %v ms",
			ErrInvalidWindow, s.overlapMs, s.sequenceMs)
	}

	s.sequenceLen = max(int(math.Round(s.sequenceMs*0.001*s.sampleRate)), 32)
	s.overlapLen = max(int(math.Round(s.overlapMs*0.001*s.sampleRate)), 8)
	if s.overlapLen >= s.sequenceLen {
		return fmt.Errorf("%w: overlap %d samples too large for sequence %d",
			ErrInvalidWindow, s.overlapLen, s.sequenceLen)
	}
	s.stepOut = s.sequenceLen - s.overlapLen
	s.searchLen = max(int(math.Round(s.searchMs*0.001*s.sampleRate)), 1)

	s.fadeIn = make([]float64, s.overlapLen)
	s.fadeOut = make([]float64, s.overlapLen)
	for i := range s.overlapLen {
		t := float64(i) / float64(s.overlapLen-1)
		in := 0.5 - 0.5*math.Cos(math.Pi*t)
		s.fadeIn[i] = in
		s.fadeOut[i] = 1 - in
	}
	return nil
}

func (s *Stretcher) stretch(input []float64, targetLen int) []float64 {
	nominalInStep := max(float64(s.stepOut)*s.speed, 1)

	out := make([]float64, targetLen+2*s.sequenceLen+1)
	copy(out, input[:min(s.sequenceLen, len(input))])

	outLen := s.sequenceLen
	prevStart := 0
	nextNominal := nominalInStep

	ref := make([]float64, s.overlapLen)
	scratch := make([]float64, s.sequenceLen)

	for outLen < targetLen {
		// The natural continuation of the previous sequence is the template
		// the next sequence must match.
		copy(ref, segment(input, prevStart+s.stepOut, s.overlapLen, scratch))

		predicted := int(math.Round(nextNominal))
		candStart := s.bestOverlap(ref, input, predicted, scratch)
		cand := segment(input, candStart, s.sequenceLen, scratch)

		outStart := outLen - s.overlapLen
		for i := range s.overlapLen {
			out[outStart+i] = out[outStart+i]*s.fadeOut[i] + cand[i]*s.fadeIn[i]
		}
		copy(out[outStart+s.overlapLen:], cand[s.overlapLen:])

		outLen = outStart + s.sequenceLen
		prevStart = candStart
		nextNominal += nominalInStep
	}

	return out[:targetLen]
}

// bestOverlap returns the candidate start within ±searchLen of predicted
// whose first overlapLen samples have the highest normalized correlation
// with ref.
func (s *Stretcher) bestOverlap(ref, input []float64, predicted int, scratch []float64) int {
	best := predicted
	bestScore := math.Inf(-1)

	refEnergy := f64.DotProduct(ref, ref) + tiny

	for cand := predicted - s.searchLen; cand <= predicted+s.searchLen; cand++ {
		c := segment(input, cand, len(ref), scratch)
		dot := f64.DotProduct(ref, c)
		candEnergy := f64.DotProduct(c, c) + tiny

		score := dot / math.Sqrt(refEnergy*candEnergy)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	return best
}

// segment returns x[start:start+n], reading zeros outside x. In-range
// requests alias x; others are assembled in scratch.
func segment(x []float64, start, n int, scratch []float64) []float64 {
	if start >= 0 && start+n <= len(x) {
		return x[start : start+n]
	}
	buf := scratch[:n]
	for i := range buf {
		j := start + i
		if j < 0 || j >= len(x) {
			buf[i] = 0
		} else {
			buf[i] = x[j]
		}
	}
	return buf
}
