// Package conv provides linear convolution routines.
//
// Two strategies are offered:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add (OLA): FFT-based block convolution for long signals with long kernels
//
// # Usage
//
// For one-shot convolution, use the simple functions:
//
//	full, err := conv.Convolve(signal, kernel)
//	head, err := conv.ConvolveMode(signal, kernel, conv.ModeHead)
//
// For repeated convolution with the same kernel, create a reusable convolver:
//
//	c, err := conv.NewOverlapAdd(kernel, blockSize)
//	result, err := c.Process(signal)
//
// # Algorithm Selection
//
// Convolve uses direct convolution when the shorter input has at most 64
// samples and overlap-add otherwise.
package conv
