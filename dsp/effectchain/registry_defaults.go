package effectchain

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/effects/lowpass"
	"github.com/cwbudde/slowverb/dsp/effects/pitch"
	"github.com/cwbudde/slowverb/dsp/effects/reverb"
	"github.com/cwbudde/slowverb/dsp/effects/tempo"
)

// DefaultRegistry returns a Registry holding the four built-in stages.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(StageTempo, func(p Params, sampleRate int) (Stage, error) {
		fx, err := tempo.NewStretcher(float64(sampleRate))
		if err != nil {
			return nil, err
		}

		if err := fx.SetSpeed(p.PlaybackSpeedFactor); err != nil {
			return nil, fmt.Errorf("effectchain: set speed: %w", err)
		}

		return &tempoStage{fx: fx}, nil
	})
	r.MustRegister(StageLowPass, func(p Params, sampleRate int) (Stage, error) {
		fx, err := lowpass.New(p.LowPassCutoffHz, sampleRate, lowpass.WithOrder(p.LowPassOrder))
		if err != nil {
			return nil, err
		}

		return &lowpassStage{fx: fx}, nil
	})
	r.MustRegister(StagePitch, func(p Params, sampleRate int) (Stage, error) {
		fx, err := pitch.NewSpectralPitchShifter(float64(sampleRate))
		if err != nil {
			return nil, err
		}

		if err := fx.SetPitchSemitones(p.PitchShiftSemitones); err != nil {
			return nil, fmt.Errorf("effectchain: set pitch: %w", err)
		}

		return &pitchStage{fx: fx}, nil
	})
	r.MustRegister(StageReverb, func(p Params, sampleRate int) (Stage, error) {
		fx, err := reverb.NewDecayReverb(sampleRate, p.ReverbDecaySeconds)
		if err != nil {
			return nil, err
		}

		return &reverbStage{fx: fx}, nil
	})

	return r
}
