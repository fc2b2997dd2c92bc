package effectchain

import (
	"context"
	"math"
	"sync"

	"github.com/cwbudde/slowverb/dsp/core"
)

// recorder collects the names of stages in the order they ran.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.names = append(r.names, name)
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.names...)
}

// spyStage passes audio through unchanged and records each call.
type spyStage struct {
	name string
	rec  *recorder
}

func (s *spyStage) Name() string { return s.name }

func (s *spyStage) Process(_ context.Context, in core.Buffer) (core.Buffer, error) {
	s.rec.add(s.name)

	return in.Clone(), nil
}

// funcStage adapts a function to the Stage interface.
type funcStage struct {
	name string
	fn   func(ctx context.Context, in core.Buffer) (core.Buffer, error)
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Process(ctx context.Context, in core.Buffer) (core.Buffer, error) {
	return s.fn(ctx, in)
}

// spyIntermediate records round trips and returns a copy of its input.
type spyIntermediate struct {
	rec     *recorder
	lengths []int
}

func (s *spyIntermediate) RoundTrip(_ context.Context, in core.Buffer) (core.Buffer, error) {
	s.rec.add(StageIntermediate)
	s.lengths = append(s.lengths, len(in.Samples))

	return in.Clone(), nil
}

// spyRegistry returns a registry whose stages all record into rec.
func spyRegistry(rec *recorder) (*Registry, *int) {
	built := new(int)
	r := NewRegistry()

	for _, name := range StageOrder() {
		r.MustRegister(name, func(_ Params, _ int) (Stage, error) {
			*built++

			return &spyStage{name: name, rec: rec}, nil
		})
	}

	return r, built
}

func nanStage(name string) Factory {
	return func(_ Params, _ int) (Stage, error) {
		return &funcStage{name: name, fn: func(_ context.Context, in core.Buffer) (core.Buffer, error) {
			out := in.Clone()
			out.Samples[len(out.Samples)/2] = math.NaN()

			return out, nil
		}}, nil
	}
}

func nan() float64 { return math.NaN() }
