// Package wavio reads and writes mono PCM WAV files.
//
// Decoding accepts 16, 24 and 32-bit PCM with any channel count and mixes
// down to mono. Encoding always writes a single channel. [Intermediate]
// provides the lossless on-disk round trip used between the filter and
// pitch stages.
package wavio
