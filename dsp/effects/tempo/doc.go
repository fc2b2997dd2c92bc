// Package tempo changes playback speed without changing pitch.
//
// [Stretcher] implements WSOLA (waveform-similarity overlap-add): the input
// is cut into overlapping sequences whose start positions are nudged within
// a seek window so that each new sequence lines up with the tail of the
// previous one, and consecutive sequences are joined with a raised-cosine
// cross-fade. A speed factor s yields round(len/s) output samples; s < 1
// slows the material down.
package tempo
