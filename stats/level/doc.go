// Package level computes peak, RMS, crest-factor and moment statistics of
// mono signals, and a combined report including the dominant frequency.
package level
