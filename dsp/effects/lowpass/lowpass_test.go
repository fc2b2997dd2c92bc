package lowpass

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/slowverb/dsp/spectrum"
	"github.com/cwbudde/slowverb/internal/testutil"
)

func TestClampCutoff(t *testing.T) {
	tests := []struct {
		name        string
		fc          float64
		sampleRate  int
		want        float64
		wantClamped bool
	}{
		{"in range", 3000, 44100, 3000, false},
		{"zero", 0, 44100, MinCutoffHz, true},
		{"negative", -50, 44100, MinCutoffHz, true},
		{"above nyquist", 30000, 44100, 0.49 * 44100, true},
		{"at nyquist", 22050, 44100, 0.49 * 44100, true},
		{"at upper bound", 0.49 * 44100, 44100, 0.49 * 44100, false},
		{"at lower bound", MinCutoffHz, 8000, MinCutoffHz, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := ClampCutoff(tt.fc, tt.sampleRate)
			if got != tt.want || clamped != tt.wantClamped {
				t.Fatalf("ClampCutoff(%v) = (%v, %v), want (%v, %v)", tt.fc, got, clamped, tt.want, tt.wantClamped)
			}
		})
	}

	if got, clamped := ClampCutoff(math.NaN(), 44100); !math.IsNaN(got) || clamped {
		t.Fatalf("NaN cutoff: got (%v, %v)", got, clamped)
	}
}

func TestFilter_Minus3dBAtCutoff(t *testing.T) {
	for _, order := range []int{1, 2, 4} {
		f, err := New(3000, 44100, WithOrder(order))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if db := f.MagnitudeDB(3000); math.Abs(db+3.0103) > 0.05 {
			t.Errorf("order %d: %.3f dB at cutoff, want -3.01", order, db)
		}
	}
}

func TestFilter_MeasuredResponse(t *testing.T) {
	const sr = 48000
	f, err := New(3000, sr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Tones chosen to complete whole cycles in the measured window.
	tests := []struct {
		freq   float64
		wantDB float64
		tolDB  float64
	}{
		{300, 0, 0.1},
		{3000, -3.01, 0.45}, // ±10% amplitude
		{12000, -28.06, 0.3},
	}

	skip := 4800
	for _, tt := range tests {
		in := testutil.DeterministicSine(tt.freq, sr, 1, sr)
		out := f.Process(in)

		amp, err := spectrum.ToneAmplitude(out[skip:], tt.freq, sr)
		if err != nil {
			t.Fatalf("ToneAmplitude: %v", err)
		}
		db := 20 * math.Log10(amp)
		if math.Abs(db-tt.wantDB) > tt.tolDB {
			t.Errorf("%v Hz: measured %.2f dB, want %.2f±%.2f", tt.freq, db, tt.wantDB, tt.tolDB)
		}
	}
}

func TestFilter_ProcessIsPureAndRepeatable(t *testing.T) {
	f, err := New(1000, 44100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicNoise(7, 0.5, 4096)
	orig := append([]float64(nil), in...)

	a := f.Process(in)
	b := f.Process(in)

	if len(a) != len(in) {
		t.Fatalf("length %d, want %d", len(a), len(in))
	}
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
	testutil.RequireSliceNearlyEqual(t, in, orig, 0)
	testutil.RequireFinite(t, a)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fc      float64
		sr      int
		order   int
		wantErr error
	}{
		{"nan cutoff", math.NaN(), 44100, 2, ErrInvalidCutoff},
		{"inf cutoff", math.Inf(1), 44100, 2, ErrInvalidCutoff},
		{"cutoff above range", 22000, 44100, 2, ErrInvalidCutoff},
		{"cutoff below range", 1, 44100, 2, ErrInvalidCutoff},
		{"order zero", 3000, 44100, 0, ErrInvalidOrder},
		{"order too high", 3000, 44100, 9, ErrInvalidOrder},
		{"sample rate", 3000, 0, 2, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fc, tt.sr, WithOrder(tt.order))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFilter_OddOrder(t *testing.T) {
	f, err := New(2000, 44100, WithOrder(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.Order() != 3 {
		t.Fatalf("Order() = %d, want 3", f.Order())
	}
	if f.Cutoff() != 2000 {
		t.Fatalf("Cutoff() = %v, want 2000", f.Cutoff())
	}
}
