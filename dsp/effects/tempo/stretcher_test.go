package tempo

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/slowverb/dsp/spectrum"
	"github.com/cwbudde/slowverb/internal/testutil"
)

func TestNewStretcherValidation(t *testing.T) {
	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, err := NewStretcher(sr); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("NewStretcher(%v) error = %v, want ErrInvalidSampleRate", sr, err)
		}
	}

	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}
	if s.Speed() != 1 {
		t.Fatalf("Speed() = %v, want 1", s.Speed())
	}
	if s.Sequence() != 82 || s.Overlap() != 10 || s.Search() != 28 {
		t.Fatalf("windows = %v/%v/%v, want 82/10/28", s.Sequence(), s.Overlap(), s.Search())
	}
}

func TestStretcherSetSpeed(t *testing.T) {
	tests := []struct {
		name    string
		speed   float64
		wantErr bool
	}{
		{name: "slow", speed: 0.8},
		{name: "fast", speed: 1.5},
		{name: "min", speed: MinSpeed},
		{name: "max", speed: MaxSpeed},
		{name: "zero", speed: 0, wantErr: true},
		{name: "negative", speed: -1, wantErr: true},
		{name: "too slow", speed: 0.01, wantErr: true},
		{name: "too fast", speed: 25, wantErr: true},
		{name: "nan", speed: math.NaN(), wantErr: true},
		{name: "inf", speed: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStretcher(44100)
			if err != nil {
				t.Fatalf("NewStretcher() error = %v", err)
			}

			err = s.SetSpeed(tt.speed)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpeed) {
					t.Fatalf("SetSpeed(%v) error = %v, want ErrInvalidSpeed", tt.speed, err)
				}
				if s.Speed() != 1 {
					t.Fatalf("Speed() = %v after rejected update", s.Speed())
				}

				return
			}

			if err != nil {
				t.Fatalf("SetSpeed(%v) error = %v", tt.speed, err)
			}
			if s.Speed() != tt.speed {
				t.Fatalf("Speed() = %v, want %v", s.Speed(), tt.speed)
			}
		})
	}
}

func TestStretcherWindowSetters(t *testing.T) {
	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}

	if err := s.SetSequence(40); err != nil {
		t.Fatalf("SetSequence() error = %v", err)
	}
	if err := s.SetSearch(15); err != nil {
		t.Fatalf("SetSearch() error = %v", err)
	}
	if err := s.SetOverlap(8); err != nil {
		t.Fatalf("SetOverlap() error = %v", err)
	}

	if err := s.SetSequence(5); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("SetSequence(5) error = %v, want ErrInvalidWindow", err)
	}
	if err := s.SetOverlap(50); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("SetOverlap(50) error = %v, want ErrInvalidWindow", err)
	}
	if s.Overlap() != 8 {
		t.Fatalf("Overlap() = %v, want 8 after rejected update", s.Overlap())
	}
	if err := s.SetSearch(math.NaN()); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("SetSearch(NaN) error = %v, want ErrInvalidWindow", err)
	}
}

func TestStretcherIdentity(t *testing.T) {
	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}

	input := testutil.DeterministicNoise(11, 0.8, 5000)

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, out, input, 0)

	out[10] = 42
	if input[10] == 42 {
		t.Fatal("output aliases input")
	}
}

func TestStretcherOutputLength(t *testing.T) {
	tests := []struct {
		n     int
		speed float64
		want  int
	}{
		{n: 44100, speed: 0.8, want: 55125},
		{n: 44100, speed: 2, want: 22050},
		{n: 1000, speed: 0.5, want: 2000},
		{n: 1000, speed: 3, want: 333},
		{n: 10, speed: 20, want: 1},
		{n: 1, speed: 20, want: 1},
		{n: 0, speed: 0.8, want: 0},
	}

	for _, tt := range tests {
		s, err := NewStretcher(44100)
		if err != nil {
			t.Fatalf("NewStretcher() error = %v", err)
		}
		if err := s.SetSpeed(tt.speed); err != nil {
			t.Fatalf("SetSpeed() error = %v", err)
		}

		if got := s.OutputLength(tt.n); got != tt.want {
			t.Fatalf("OutputLength(%d) at %v = %d, want %d", tt.n, tt.speed, got, tt.want)
		}

		input := testutil.DeterministicSine(440, 44100, 0.5, tt.n)

		out, err := s.Process(input)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(out) != tt.want {
			t.Fatalf("len(Process()) for n=%d at %v = %d, want %d", tt.n, tt.speed, len(out), tt.want)
		}

		testutil.RequireFinite(t, out)
	}
}

func TestStretcherPreservesPitch(t *testing.T) {
	const sampleRate = 44100.0

	input := testutil.DeterministicSine(440, sampleRate, 0.8, int(sampleRate))

	for _, speed := range []float64{0.5, 0.8, 1.25, 2} {
		s, err := NewStretcher(sampleRate)
		if err != nil {
			t.Fatalf("NewStretcher() error = %v", err)
		}
		if err := s.SetSpeed(speed); err != nil {
			t.Fatalf("SetSpeed() error = %v", err)
		}

		out, err := s.Process(input)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		n := len(out)
		got, err := spectrum.DominantFrequency(out[n/8:7*n/8], sampleRate)
		if err != nil {
			t.Fatalf("DominantFrequency() error = %v", err)
		}

		testutil.RequireRelErr(t, "dominant frequency", got, 440, 0.02)
	}
}

func TestStretcherKeepsLevel(t *testing.T) {
	input := testutil.DeterministicSine(220, 44100, 0.5, 44100)

	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}
	if err := s.SetSpeed(0.8); err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}

	out, err := s.Process(input)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	peak := testutil.SteadyStateAmplitude(out[:len(out)*3/4], 0)
	if peak < 0.45 || peak > 0.55 {
		t.Fatalf("peak = %v, want about 0.5", peak)
	}
}

func TestStretcherEmptyInput(t *testing.T) {
	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}
	if err := s.SetSpeed(0.8); err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}

	out, err := s.Process(nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("Process(nil) = %v, want empty non-nil slice", out)
	}
}

func TestStretcherDoesNotMutateInput(t *testing.T) {
	s, err := NewStretcher(44100)
	if err != nil {
		t.Fatalf("NewStretcher() error = %v", err)
	}
	if err := s.SetSpeed(0.8); err != nil {
		t.Fatalf("SetSpeed() error = %v", err)
	}

	input := testutil.DeterministicNoise(5, 0.6, 20000)
	orig := append([]float64(nil), input...)

	if _, err := s.Process(input); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, input, orig, 0)
}

func TestStretcherDeterministic(t *testing.T) {
	input := testutil.DeterministicNoise(9, 0.6, 30000)

	run := func() []float64 {
		s, err := NewStretcher(48000)
		if err != nil {
			t.Fatalf("NewStretcher() error = %v", err)
		}
		if err := s.SetSpeed(0.7); err != nil {
			t.Fatalf("SetSpeed() error = %v", err)
		}

		out, err := s.Process(input)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		return out
	}

	testutil.RequireSliceNearlyEqual(t, run(), run(), 0)
}

func BenchmarkStretcherProcess(b *testing.B) {
	s, err := NewStretcher(44100)
	if err != nil {
		b.Fatalf("NewStretcher() error = %v", err)
	}
	if err := s.SetSpeed(0.8); err != nil {
		b.Fatalf("SetSpeed() error = %v", err)
	}

	input := testutil.DeterministicSine(440, 44100, 0.8, 44100)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if _, err := s.Process(input); err != nil {
			b.Fatal(err)
		}
	}
}
