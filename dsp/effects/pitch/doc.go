// Package pitch shifts the pitch of mono buffers without changing their
// duration, using [SpectralPitchShifter], a phase-vocoder STFT processor.
package pitch
