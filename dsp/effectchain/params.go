package effectchain

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/effects/lowpass"
	"github.com/cwbudde/slowverb/dsp/effects/pitch"
	"github.com/cwbudde/slowverb/dsp/effects/tempo"
)

const (
	// MinSampleRate is the lowest input rate the engine accepts.
	MinSampleRate = 1000

	// MaxReverbDecaySeconds bounds the reverb kernel length.
	MaxReverbDecaySeconds = 10.0
)

// Params holds the effect parameters of one run. The zero value is not
// valid; start from DefaultParams.
type Params struct {
	PlaybackSpeedFactor float64 `json:"speed"`
	LowPassCutoffHz     float64 `json:"cutoff_hz"`
	PitchShiftSemitones float64 `json:"semitones"`
	ReverbDecaySeconds  float64 `json:"decay_seconds"`

	// LowPassOrder is the Butterworth order. Zero selects the default.
	LowPassOrder int `json:"lowpass_order,omitempty"`
}

// DefaultParams returns the "slowed + reverb" preset: 0.8x speed, 3 kHz
// low-pass, one semitone down and a 0.3 s decay.
func DefaultParams() Params {
	return Params{
		PlaybackSpeedFactor: 0.8,
		LowPassCutoffHz:     3000,
		PitchShiftSemitones: -1,
		ReverbDecaySeconds:  0.3,
		LowPassOrder:        lowpass.DefaultOrder,
	}
}

// Validate reports the first parameter that no stage can accept. Speeds,
// shifts and cutoffs outside the stage ranges are not an error here; they are
// clamped by the engine and reported as warnings.
func (p Params) Validate() error {
	if s := p.PlaybackSpeedFactor; !core.IsFinitePositive(s) {
		return invalidParam("speed", fmt.Sprintf("must be finite and > 0, got %v", s), tempo.ErrInvalidSpeed)
	}

	if !core.IsFinite(p.LowPassCutoffHz) {
		return invalidParam("cutoff_hz", fmt.Sprintf("must be finite, got %v", p.LowPassCutoffHz), lowpass.ErrInvalidCutoff)
	}

	if o := p.LowPassOrder; o != 0 && (o < lowpass.MinOrder || o > lowpass.MaxOrder) {
		return invalidParam("lowpass_order",
			fmt.Sprintf("%d not in [%d, %d]", o, lowpass.MinOrder, lowpass.MaxOrder), lowpass.ErrInvalidOrder)
	}

	if n := p.PitchShiftSemitones; !core.IsFinite(n) {
		return invalidParam("semitones", fmt.Sprintf("must be finite, got %v", n), pitch.ErrInvalidShift)
	}

	if d := p.ReverbDecaySeconds; !core.IsFinitePositive(d) || d > MaxReverbDecaySeconds {
		return invalidParam("decay_seconds", fmt.Sprintf("%v not in (0, %v]", d, MaxReverbDecaySeconds), nil)
	}

	return nil
}
