// Package spectrum provides frequency-domain measurements of mono buffers:
// dominant-frequency estimation, single-tone amplitude via the Goertzel
// algorithm, and magnitude/power of complex spectra.
package spectrum
