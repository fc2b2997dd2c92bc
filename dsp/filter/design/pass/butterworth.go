package pass

import (
	"github.com/cwbudde/slowverb/dsp/filter/biquad"
)

// ButterworthLP designs a lowpass Butterworth cascade.
//
// The result has order/2 second-order sections ordered from lowest to
// highest Q. For odd orders, the final section is first-order (B2=A2=0).
// A non-positive order or a cutoff outside (0, sampleRate/2) yields nil.
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}
	if _, ok := bilinearK(freq, sampleRate); !ok {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, LowpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		sections = append(sections, butterworthFirstOrderLP(freq, sampleRate))
	}
	return sections
}
