package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/spectrum"
	"github.com/cwbudde/slowverb/internal/testutil"
)

func ExampleMagnitude() {
	bins := []complex128{1 + 0i, 0 + 1i, -1 + 0i}
	mag := spectrum.Magnitude(bins)
	fmt.Printf("%.1f %.1f %.1f\n", mag[0], mag[1], mag[2])
	// Output:
	// 1.0 1.0 1.0
}

func ExampleDominantFrequency() {
	tone := testutil.DeterministicSine(440, 44100, 0.5, 44100)
	f, _ := spectrum.DominantFrequency(tone, 44100)
	fmt.Printf("%.0f Hz\n", f)
	// Output:
	// 440 Hz
}
