package effectchain

import (
	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/effects/lowpass"
	"github.com/cwbudde/slowverb/dsp/effects/pitch"
	"github.com/cwbudde/slowverb/dsp/effects/tempo"
)

// normalize resolves defaults and clamps p for a run at sampleRate. p must
// already have passed Validate.
func normalize(p Params, sampleRate int) (Params, []Warning) {
	var warnings []Warning

	clamp := func(param string, v *float64, applied float64) {
		if applied == *v {
			return
		}

		warnings = append(warnings, Warning{
			Kind:      KindParameterClamped,
			Param:     param,
			Requested: *v,
			Applied:   applied,
		})
		*v = applied
	}

	if p.LowPassOrder == 0 {
		p.LowPassOrder = lowpass.DefaultOrder
	}

	clamp("speed", &p.PlaybackSpeedFactor, core.Clamp(p.PlaybackSpeedFactor, tempo.MinSpeed, tempo.MaxSpeed))

	applied, _ := lowpass.ClampCutoff(p.LowPassCutoffHz, sampleRate)
	clamp("cutoff_hz", &p.LowPassCutoffHz, applied)

	clamp("semitones", &p.PitchShiftSemitones, core.Clamp(p.PitchShiftSemitones, pitch.MinSemitones, pitch.MaxSemitones))

	return p, warnings
}
