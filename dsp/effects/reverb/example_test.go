package reverb_test

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/effects/reverb"
)

func ExampleDecayReverb_Process() {
	r, err := reverb.NewDecayReverb(10, 0.3)
	if err != nil {
		panic(err)
	}

	out, err := r.Process([]float64{1, 0, 0, 0, 0})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%.2f\n", out)
	// Output: [1.10 0.10 0.10 0.00 0.00]
}
