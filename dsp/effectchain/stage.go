package effectchain

import (
	"context"

	"github.com/cwbudde/slowverb/dsp/core"
)

// Stage names in processing order.
const (
	StageTempo        = "tempo"
	StageLowPass      = "lowpass"
	StageIntermediate = "intermediate"
	StagePitch        = "pitch"
	StageReverb       = "reverb"
)

// Stage is one step of the chain. Process must not modify in.Samples and
// returns a buffer at the same sample rate.
type Stage interface {
	Name() string
	Process(ctx context.Context, in core.Buffer) (core.Buffer, error)
}

// Intermediate round-trips a buffer through a lossless external
// representation between the filter and pitch stages.
type Intermediate interface {
	RoundTrip(ctx context.Context, in core.Buffer) (core.Buffer, error)
}

// StageOrder returns the names of the registry-built stages in the order the
// engine runs them.
func StageOrder() []string {
	return []string{StageTempo, StageLowPass, StagePitch, StageReverb}
}

type intermediateStage struct {
	rt Intermediate
}

func (s intermediateStage) Name() string { return StageIntermediate }

func (s intermediateStage) Process(ctx context.Context, in core.Buffer) (core.Buffer, error) {
	return s.rt.RoundTrip(ctx, in)
}
