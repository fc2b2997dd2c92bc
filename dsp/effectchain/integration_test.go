package effectchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/slowverb/dsp/spectrum"
	"github.com/cwbudde/slowverb/internal/testutil"
)

func TestEngineEndToEndDefaults(t *testing.T) {
	t.Parallel()

	const amp = 0.5

	in := testutil.SineBuffer(440, 44100, amp, 1)
	orig := in.Clone()

	res, err := New().Process(context.Background(), in, DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	out := res.Buffer
	assert.Equal(t, 44100, out.SampleRate)
	require.Len(t, out.Samples, 55125)
	assert.InDelta(t, 1.25, out.Seconds(), 1e-9)

	testutil.RequireFinite(t, out.Samples)

	n := len(out.Samples)
	freq, err := spectrum.DominantFrequency(out.Samples[n/4:3*n/4], float64(out.SampleRate))
	require.NoError(t, err)
	assert.InEpsilon(t, 415.3047, freq, 0.02)

	peak := testutil.SteadyStateAmplitude(out.Samples, 0)
	assert.LessOrEqual(t, peak, (1+DefaultParams().ReverbDecaySeconds)*1.5*amp)
	assert.Greater(t, peak, 0.1)

	assert.Equal(t, orig.Samples, in.Samples, "input must not be modified")

	require.Len(t, res.Trace, 4)
	assert.Equal(t, 55125, res.Trace[0].Samples)
}

func TestEngineDeterministic(t *testing.T) {
	t.Parallel()

	in := testutil.SineBuffer(330, 44100, 0.4, 0.5)
	in.Samples = append(in.Samples, testutil.DeterministicNoise(1, 0.2, 4410)...)

	engine := New()

	first, err := engine.Process(context.Background(), in, DefaultParams())
	require.NoError(t, err)

	second, err := engine.Process(context.Background(), in, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, first.Buffer, second.Buffer)
}

func TestEngineConcurrentRunsAgree(t *testing.T) {
	t.Parallel()

	in := testutil.SineBuffer(220, 22050, 0.4, 0.3)
	engine := New()

	want, err := engine.Process(context.Background(), in, DefaultParams())
	require.NoError(t, err)

	results := make(chan []float64, 4)
	for range 4 {
		go func() {
			res, err := engine.Process(context.Background(), in, DefaultParams())
			if err != nil {
				results <- nil

				return
			}
			results <- res.Buffer.Samples
		}()
	}

	for range 4 {
		assert.Equal(t, want.Buffer.Samples, <-results)
	}
}

func TestEngineNeutralStagesPreserveLength(t *testing.T) {
	t.Parallel()

	in := testutil.SineBuffer(440, 44100, 0.5, 0.25)

	p := DefaultParams()
	p.PlaybackSpeedFactor = 1
	p.PitchShiftSemitones = 0

	res, err := New().Process(context.Background(), in, p)
	require.NoError(t, err)
	assert.Len(t, res.Buffer.Samples, len(in.Samples))
}

func TestEngineOctaveDown(t *testing.T) {
	t.Parallel()

	in := testutil.SineBuffer(880, 44100, 0.5, 1)

	p := DefaultParams()
	p.PlaybackSpeedFactor = 1
	p.PitchShiftSemitones = -12
	p.LowPassCutoffHz = 5000

	res, err := New().Process(context.Background(), in, p)
	require.NoError(t, err)

	n := len(res.Buffer.Samples)
	freq, err := spectrum.DominantFrequency(res.Buffer.Samples[n/4:3*n/4], 44100)
	require.NoError(t, err)
	assert.InEpsilon(t, 440.0, freq, 0.02)
}

func TestEngineClampsOutOfRangeSpeedAndShift(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.PlaybackSpeedFactor = 40
	p.PitchShiftSemitones = -30

	res, err := New().Process(context.Background(), testutil.SineBuffer(440, 44100, 0.5, 1), p)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "speed", res.Warnings[0].Param)
	assert.Equal(t, 20.0, res.Warnings[0].Applied)
	assert.Equal(t, "semitones", res.Warnings[1].Param)
	assert.Equal(t, -24.0, res.Warnings[1].Applied)

	require.Len(t, res.Buffer.Samples, 2205)
	testutil.RequireFinite(t, res.Buffer.Samples)
}
