package effectchain

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/slowverb/dsp/core"
)

// Result is the outcome of a successful run.
type Result struct {
	Buffer   core.Buffer
	Warnings []Warning
	Trace    []StageTrace
}

// StageTrace records one executed stage.
type StageTrace struct {
	Stage   string
	Samples int
	Elapsed time.Duration
}

// Engine runs the fixed stage sequence tempo, lowpass, [intermediate],
// pitch, reverb over a buffer. An Engine holds no per-run state and may be
// used from several goroutines at once.
type Engine struct {
	log          logrus.FieldLogger
	registry     *Registry
	intermediate Intermediate
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithIntermediate inserts rt between the filter and pitch stages.
func WithIntermediate(rt Intermediate) Option {
	return func(e *Engine) { e.intermediate = rt }
}

// WithRegistry replaces the stage registry. The default is DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{log: discard}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = DefaultRegistry()
	}

	return e
}

// Process validates p, builds fresh stages and runs in through them. in is
// never modified. On failure the returned error is an *Error and the Result
// is zero.
func (e *Engine) Process(ctx context.Context, in core.Buffer, p Params) (Result, error) {
	if err := checkInput(in); err != nil {
		return Result{}, err
	}

	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	p, warnings := normalize(p, in.SampleRate)
	for _, w := range warnings {
		e.log.WithFields(logrus.Fields{
			"param":     w.Param,
			"requested": w.Requested,
			"applied":   w.Applied,
		}).Warn("parameter clamped")
	}

	if cerr := canceled(ctx, ""); cerr != nil {
		return Result{}, cerr
	}

	if len(in.Samples) == 0 {
		e.log.Warn("empty input, no stages run")

		return Result{
			Buffer:   core.Buffer{Samples: []float64{}, SampleRate: in.SampleRate},
			Warnings: append(warnings, Warning{Kind: KindEmptyInput, Msg: "input has no samples"}),
		}, nil
	}

	stages, err := e.build(p, in.SampleRate)
	if err != nil {
		return Result{}, err
	}

	buf := in
	trace := make([]StageTrace, 0, len(stages))
	for _, st := range stages {
		name := st.Name()
		if cerr := canceled(ctx, name); cerr != nil {
			return Result{}, cerr
		}

		start := time.Now()
		out, err := st.Process(ctx, buf)
		if err != nil {
			if cerr := canceled(ctx, name); cerr != nil {
				return Result{}, cerr
			}

			return Result{}, &Error{Kind: KindNumericalFailure, Stage: name, Msg: "stage failed", Err: err}
		}
		elapsed := time.Since(start)

		if cerr := canceled(ctx, name); cerr != nil {
			return Result{}, cerr
		}

		if idx := core.FirstNonFinite(out.Samples); idx >= 0 {
			return Result{}, &Error{
				Kind:  KindNumericalFailure,
				Stage: name,
				Msg:   fmt.Sprintf("non-finite sample %v at index %d", out.Samples[idx], idx),
			}
		}

		if out.SampleRate != in.SampleRate {
			return Result{}, &Error{
				Kind:  KindNumericalFailure,
				Stage: name,
				Msg:   fmt.Sprintf("sample rate changed from %d to %d", in.SampleRate, out.SampleRate),
			}
		}

		e.log.WithFields(logrus.Fields{
			"stage":   name,
			"samples": len(out.Samples),
			"elapsed": elapsed,
		}).Debug("stage done")

		trace = append(trace, StageTrace{Stage: name, Samples: len(out.Samples), Elapsed: elapsed})
		buf = out
	}

	return Result{Buffer: buf, Warnings: warnings, Trace: trace}, nil
}

// build creates every stage up front so that construction errors surface
// before any audio is processed.
func (e *Engine) build(p Params, sampleRate int) ([]Stage, error) {
	stages := make([]Stage, 0, len(StageOrder())+1)

	for _, name := range StageOrder() {
		factory := e.registry.Lookup(name)
		if factory == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStage, name)
		}

		st, err := factory(p, sampleRate)
		if err != nil {
			return nil, &Error{Kind: KindInvalidParameter, Stage: name, Msg: "stage rejected parameters", Err: err}
		}

		stages = append(stages, st)

		if name == StageLowPass && e.intermediate != nil {
			stages = append(stages, intermediateStage{rt: e.intermediate})
		}
	}

	return stages, nil
}

func checkInput(in core.Buffer) error {
	if in.SampleRate < MinSampleRate {
		return invalidParam("sample_rate",
			fmt.Sprintf("%d below minimum %d", in.SampleRate, MinSampleRate), core.ErrInvalidSampleRate)
	}

	if idx := core.FirstNonFinite(in.Samples); idx >= 0 {
		return invalidParam("samples", fmt.Sprintf("non-finite sample at index %d", idx), nil)
	}

	return nil
}
