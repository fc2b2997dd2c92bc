// Package decode turns source audio files into mono buffers.
//
// A [Registry] maps format names to decoders. Formats are recognised from
// the stream's leading bytes first and from the file extension second.
// [DefaultRegistry] knows WAV, MP3 (go-mp3) and Ogg Vorbis (oggvorbis).
package decode
