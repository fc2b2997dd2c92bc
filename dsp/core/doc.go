// Package core holds the audio buffer type shared by every stage and a few
// numeric helpers used across the dsp tree.
package core
