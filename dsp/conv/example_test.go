package conv_test

import (
	"fmt"

	"github.com/cwbudde/slowverb/dsp/conv"
)

func ExampleDirect() {
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(signal, kernel)

	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExampleConvolveMode() {
	// A four-tap averaging kernel; the tail past the input is dropped.
	signal := []float64{4, 0, 0, 0, 0, 0}
	kernel := []float64{0.25, 0.25, 0.25, 0.25}

	head, _ := conv.ConvolveMode(signal, kernel, conv.ModeHead)
	fmt.Printf("%.2f\n", head)

	// Output:
	// [1.00 1.00 1.00 1.00 0.00 0.00]
}
