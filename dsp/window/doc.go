// Package window generates the tapering windows used for STFT framing and
// spectral analysis.
package window
