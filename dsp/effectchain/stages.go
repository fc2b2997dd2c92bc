package effectchain

import (
	"context"

	"github.com/cwbudde/slowverb/dsp/core"
	"github.com/cwbudde/slowverb/dsp/effects/lowpass"
	"github.com/cwbudde/slowverb/dsp/effects/pitch"
	"github.com/cwbudde/slowverb/dsp/effects/reverb"
	"github.com/cwbudde/slowverb/dsp/effects/tempo"
)

type tempoStage struct {
	fx *tempo.Stretcher
}

func (s *tempoStage) Name() string { return StageTempo }

func (s *tempoStage) Process(_ context.Context, in core.Buffer) (core.Buffer, error) {
	out, err := s.fx.Process(in.Samples)
	if err != nil {
		return core.Buffer{}, err
	}

	return in.WithSamples(out), nil
}

type lowpassStage struct {
	fx *lowpass.Filter
}

func (s *lowpassStage) Name() string { return StageLowPass }

func (s *lowpassStage) Process(_ context.Context, in core.Buffer) (core.Buffer, error) {
	return in.WithSamples(s.fx.Process(in.Samples)), nil
}

type pitchStage struct {
	fx *pitch.SpectralPitchShifter
}

func (s *pitchStage) Name() string { return StagePitch }

func (s *pitchStage) Process(_ context.Context, in core.Buffer) (core.Buffer, error) {
	out, err := s.fx.Process(in.Samples)
	if err != nil {
		return core.Buffer{}, err
	}

	return in.WithSamples(out), nil
}

type reverbStage struct {
	fx *reverb.DecayReverb
}

func (s *reverbStage) Name() string { return StageReverb }

func (s *reverbStage) Process(_ context.Context, in core.Buffer) (core.Buffer, error) {
	out, err := s.fx.Process(in.Samples)
	if err != nil {
		return core.Buffer{}, err
	}

	return in.WithSamples(out), nil
}
