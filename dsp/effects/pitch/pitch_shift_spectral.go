package pitch

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	resampler "github.com/tphakala/go-audio-resampler"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/window"
)

const (
	// MinSemitones and MaxSemitones bound the accepted shift (two octaves).
	MinSemitones = -24.0
	MaxSemitones = 24.0

	minRatio = 0.25
	maxRatio = 4.0

	defaultFrameSize   = 1024
	defaultHopSize     = 256
	minFrameSize       = 64

	identityEps = 1e-12

	// normFloorRatio bounds the overlap-add gain where few frames overlap,
	// relative to the largest window power sum.
	normFloorRatio = 0.1

	// edgeFrames is the zero padding on each side of the input, in
	// synthesis frames, so every kept sample is fully overlapped.
	edgeFrames = 3
)

var (
	// ErrInvalidShift is returned for non-finite or out-of-range shifts.
	ErrInvalidShift = errors.New("pitch: invalid pitch shift")

	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("pitch: invalid sample rate")

	// ErrInvalidFrame is returned for unusable frame or hop sizes.
	ErrInvalidFrame = errors.New("pitch: invalid frame configuration")
)

// SpectralPitchShifter shifts pitch with a phase-vocoder STFT while keeping
// duration. The signal is time-stretched by the pitch ratio with identity
// phase locking (Laroche & Dolson) and resampled back to its original
// length.
//
// A SpectralPitchShifter holds scratch state and must not be shared between
// goroutines.
type SpectralPitchShifter struct {
	sampleRate   float64
	pitchRatio   float64
	frameSize    int
	hop          int
	analysisHop  int
	synthesisHop int
	quality      resampler.QualityPreset

	plan *algofft.Plan[complex128]

	windowCoeffs []float64
	omega        []float64
	prevPhase    []float64
	sumPhase     []float64

	analysisSpectrum  []complex128
	synthesisSpectrum []complex128
	timeFrame         []complex128

	magnitudes []float64
	instFreqs  []float64
	peakBins   []int
}

// Option configures a SpectralPitchShifter.
type Option func(*SpectralPitchShifter)

// WithFrameSize sets the FFT frame size (power of two, >= 64).
func WithFrameSize(n int) Option {
	return func(s *SpectralPitchShifter) { s.frameSize = n }
}

// WithHopSize sets the larger of the analysis and synthesis hops in
// samples. Downward shifts analyse at this hop and upward shifts resynthesize
// at it, so frames overlap by at least frameSize-hop either way.
func WithHopSize(hop int) Option {
	return func(s *SpectralPitchShifter) { s.hop = hop }
}

// WithResampleQuality sets the quality preset used for duration correction.
func WithResampleQuality(q resampler.QualityPreset) Option {
	return func(s *SpectralPitchShifter) { s.quality = q }
}

// NewSpectralPitchShifter creates a shifter with a 1024-point frame, a hop
// size of 256 and no shift.
func NewSpectralPitchShifter(sampleRate float64, opts ...Option) (*SpectralPitchShifter, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	s := &SpectralPitchShifter{
		sampleRate: sampleRate,
		pitchRatio: 1,
		frameSize:  defaultFrameSize,
		hop:        defaultHopSize,
		quality:    resampler.QualityHigh,
	}
	for _, o := range opts {
		o(s)
	}

	if s.frameSize < minFrameSize || s.frameSize&(s.frameSize-1) != 0 {
		return nil, fmt.Errorf("%w: frame size %d must be a power of two >= %d", ErrInvalidFrame, s.frameSize, minFrameSize)
	}
	if s.hop <= 0 || s.hop >= s.frameSize {
		return nil, fmt.Errorf("%w: hop %d not in [1, %d)", ErrInvalidFrame, s.hop, s.frameSize)
	}

	s.updateHops()
	if err := s.allocate(); err != nil {
		return nil, err
	}

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *SpectralPitchShifter) SampleRate() float64 { return s.sampleRate }

// PitchRatio returns the requested frequency ratio.
func (s *SpectralPitchShifter) PitchRatio() float64 { return s.pitchRatio }

// PitchSemitones returns the requested shift in semitones.
func (s *SpectralPitchShifter) PitchSemitones() float64 { return 12 * math.Log2(s.pitchRatio) }

// FrameSize returns the FFT frame size.
func (s *SpectralPitchShifter) FrameSize() int { return s.frameSize }

// AnalysisHop returns the analysis hop in samples.
func (s *SpectralPitchShifter) AnalysisHop() int { return s.analysisHop }

// SynthesisHop returns the synthesis hop in samples.
func (s *SpectralPitchShifter) SynthesisHop() int { return s.synthesisHop }

// EffectivePitchRatio returns the ratio actually realised, which is the
// requested ratio quantized to SynthesisHop/AnalysisHop.
func (s *SpectralPitchShifter) EffectivePitchRatio() float64 {
	return float64(s.synthesisHop) / float64(s.analysisHop)
}

// SetPitchRatio sets the frequency ratio, within [0.25, 4].
func (s *SpectralPitchShifter) SetPitchRatio(ratio float64) error {
	if !core.IsFinitePositive(ratio) || ratio < minRatio || ratio > maxRatio {
		return fmt.Errorf("%w: ratio %v not in [%v, %v]", ErrInvalidShift, ratio, minRatio, maxRatio)
	}

	s.pitchRatio = ratio
	s.updateHops()

	return nil
}

// SetPitchSemitones sets the shift in semitones, within [MinSemitones,
// MaxSemitones].
func (s *SpectralPitchShifter) SetPitchSemitones(semitones float64) error {
	if !core.IsFinite(semitones) || semitones < MinSemitones || semitones > MaxSemitones {
		return fmt.Errorf("%w: %v semitones not in [%v, %v]", ErrInvalidShift, semitones, MinSemitones, MaxSemitones)
	}

	return s.SetPitchRatio(core.SemitonesToRatio(semitones))
}

// Process returns a pitch-shifted copy of input with exactly len(input)
// samples. A zero shift returns an exact copy.
func (s *SpectralPitchShifter) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return []float64{}, nil
	}

	if math.Abs(s.pitchRatio-1) <= identityEps {
		return core.FitLength(input, len(input)), nil
	}

	s.reset()

	return s.processTimeStretch(input)
}

func (s *SpectralPitchShifter) reset() {
	clear(s.prevPhase)
	clear(s.sumPhase)
}

// analyze windows the frame starting at pos, transforms it and fills
// magnitudes and instantaneous frequencies for a hop of hop samples.
func (s *SpectralPitchShifter) analyze(input []float64, pos, hop int) error {
	for i := range s.frameSize {
		x := 0.0
		if idx := pos + i; idx < len(input) {
			x = input[idx]
		}
		s.analysisSpectrum[i] = complex(x*s.windowCoeffs[i], 0)
	}

	if err := s.plan.Forward(s.analysisSpectrum, s.analysisSpectrum); err != nil {
		return fmt.Errorf("pitch: forward FFT failed: %w", err)
	}

	hopF := float64(hop)
	for k := 0; k <= s.frameSize/2; k++ {
		re := real(s.analysisSpectrum[k])
		im := imag(s.analysisSpectrum[k])
		s.magnitudes[k] = math.Hypot(re, im)
		phase := math.Atan2(im, re)

		delta := wrapPhase(phase - s.prevPhase[k] - s.omega[k]*hopF)
		s.instFreqs[k] = s.omega[k] + delta/hopF
		s.prevPhase[k] = phase
	}

	return nil
}

// synthesize mirrors the half spectrum, inverse-transforms it and
// overlap-adds the windowed frame into out at pos.
func (s *SpectralPitchShifter) synthesize(out, norm []float64, pos int) error {
	half := s.frameSize / 2
	s.synthesisSpectrum[0] = complex(real(s.synthesisSpectrum[0]), 0)
	s.synthesisSpectrum[half] = complex(real(s.synthesisSpectrum[half]), 0)
	for k := 1; k < half; k++ {
		v := s.synthesisSpectrum[k]
		s.synthesisSpectrum[s.frameSize-k] = complex(real(v), -imag(v))
	}

	if err := s.plan.Inverse(s.timeFrame, s.synthesisSpectrum); err != nil {
		return fmt.Errorf("pitch: inverse FFT failed: %w", err)
	}

	for i := range s.frameSize {
		w := s.windowCoeffs[i]
		out[pos+i] += real(s.timeFrame[i]) * w
		norm[pos+i] += w * w
	}

	return nil
}

// edgePadding returns the number of zeros placed before and after the input.
// In the stretched signal it spans edgeFrames frames, so the samples kept
// after resampling never fall where the frame overlap is incomplete.
func (s *SpectralPitchShifter) edgePadding() int {
	return int(math.Ceil(float64(edgeFrames*s.frameSize*s.analysisHop) / float64(s.synthesisHop)))
}

// latency returns the delay, in input samples, that frame placement adds
// after resampling. A frame centred at t in the input is centred at
// alpha*t + (1-alpha)*frameSize/2 in the stretched signal.
func (s *SpectralPitchShifter) latency() int {
	alpha := float64(s.synthesisHop) / float64(s.analysisHop)

	return int(math.Round((1 - alpha) * float64(s.frameSize) / (2 * alpha)))
}

func (s *SpectralPitchShifter) processTimeStretch(input []float64) ([]float64, error) {
	pad := s.edgePadding()
	padded := make([]float64, len(input)+2*pad)
	copy(padded[pad:], input)

	frameCount := 1 + (len(padded)-1)/s.analysisHop
	stretchedLen := (frameCount-1)*s.synthesisHop + s.frameSize
	stretched := make([]float64, stretchedLen)
	norm := make([]float64, stretchedLen)

	half := s.frameSize / 2
	synthesisHopF := float64(s.synthesisHop)

	for frame := range frameCount {
		if err := s.analyze(padded, frame*s.analysisHop, s.analysisHop); err != nil {
			return nil, err
		}

		s.peakBins = s.peakBins[:0]
		for k := 1; k < half; k++ {
			if s.magnitudes[k] >= s.magnitudes[k-1] && s.magnitudes[k] > s.magnitudes[k+1] {
				s.peakBins = append(s.peakBins, k)
			}
		}

		if len(s.peakBins) == 0 {
			for k := 0; k <= half; k++ {
				s.sumPhase[k] += s.instFreqs[k] * synthesisHopF
			}
		} else {
			// Peaks advance by their own frequency; every other bin keeps
			// its analysis phase offset to the nearest peak.
			for _, pk := range s.peakBins {
				s.sumPhase[pk] += s.instFreqs[pk] * synthesisHopF
			}

			peakIdx := 0
			for k := 0; k <= half; k++ {
				for peakIdx+1 < len(s.peakBins) &&
					absInt(s.peakBins[peakIdx+1]-k) < absInt(s.peakBins[peakIdx]-k) {
					peakIdx++
				}

				if pk := s.peakBins[peakIdx]; k != pk {
					s.sumPhase[k] = s.sumPhase[pk] + (s.prevPhase[k] - s.prevPhase[pk])
				}
			}
		}

		for k := 0; k <= half; k++ {
			s.synthesisSpectrum[k] = complex(
				s.magnitudes[k]*math.Cos(s.sumPhase[k]),
				s.magnitudes[k]*math.Sin(s.sumPhase[k]),
			)
		}

		if err := s.synthesize(stretched, norm, frame*s.synthesisHop); err != nil {
			return nil, err
		}
	}

	normalize(stretched, norm)

	if s.synthesisHop == s.analysisHop {
		return crop(stretched, pad, len(input)), nil
	}

	// Playing the stretched signal back at its original duration scales
	// every frequency by synthesisHop/analysisHop. Input sample i lands at
	// pad+latency+i.
	outRate := s.sampleRate * float64(s.analysisHop) / float64(s.synthesisHop)
	shifted, err := resampler.ResampleMono(stretched, s.sampleRate, outRate, s.quality)
	if err != nil {
		return nil, fmt.Errorf("pitch: resampling failed: %w", err)
	}

	return crop(shifted, pad+s.latency(), len(input)), nil
}

func (s *SpectralPitchShifter) allocate() error {
	plan, err := algofft.NewPlan64(s.frameSize)
	if err != nil {
		return fmt.Errorf("pitch: failed to create FFT plan: %w", err)
	}
	s.plan = plan

	s.windowCoeffs = window.Generate(window.TypeHann, s.frameSize, window.WithPeriodic())

	bins := s.frameSize/2 + 1
	s.omega = make([]float64, bins)
	for k := range bins {
		s.omega[k] = 2 * math.Pi * float64(k) / float64(s.frameSize)
	}

	s.prevPhase = make([]float64, bins)
	s.sumPhase = make([]float64, bins)
	s.analysisSpectrum = make([]complex128, s.frameSize)
	s.synthesisSpectrum = make([]complex128, s.frameSize)
	s.timeFrame = make([]complex128, s.frameSize)

	s.magnitudes = make([]float64, bins)
	s.instFreqs = make([]float64, bins)
	s.peakBins = make([]int, 0, bins)

	return nil
}

func (s *SpectralPitchShifter) updateHops() {
	if s.pitchRatio <= 1 {
		s.analysisHop = s.hop
		s.synthesisHop = max(int(math.Round(float64(s.hop)*s.pitchRatio)), 1)

		return
	}

	s.synthesisHop = s.hop
	s.analysisHop = max(int(math.Round(float64(s.hop)/s.pitchRatio)), 1)
}

// normalize divides out the overlap-added window power. The divisor never
// drops below normFloorRatio of its maximum, which keeps sparsely
// overlapped edges bounded.
func normalize(x, norm []float64) {
	if len(norm) == 0 {
		return
	}

	floor := normFloorRatio * floats.Max(norm)
	if floor <= 0 {
		return
	}

	for i := range x {
		x[i] /= max(norm[i], floor)
	}
}

// crop returns n samples of x starting at offset, zero-filled past the end.
func crop(x []float64, offset, n int) []float64 {
	if offset > len(x) {
		offset = len(x)
	}

	return core.FitLength(x[offset:], n)
}

func wrapPhase(x float64) float64 {
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}
