package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireRelErr fails t if |got-want|/|want| exceeds tol.
func RequireRelErr(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	relErr := math.Abs(got-want) / math.Abs(want)
	if relErr > tol {
		t.Fatalf("%s rel err = %f (got %f, want %f, tol %f)", name, relErr, got, want, tol)
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

// SteadyStateAmplitude returns the peak absolute value of x after skipping
// the first skip samples (filter transients).
func SteadyStateAmplitude(x []float64, skip int) float64 {
	peak := 0.0
	for i := skip; i < len(x); i++ {
		if a := math.Abs(x[i]); a > peak {
			peak = a
		}
	}
	return peak
}
