package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"

	"github.com/cwbudde/slowverb/audio/wavio"
	"github.com/cwbudde/slowverb/dsp/core"
)

// DefaultRegistry returns a registry with the WAV, MP3 and Ogg Vorbis
// decoders.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("wav", DecoderFunc(decodeWAV), sniffWAV, ".wav", ".wave")
	r.Register("mp3", DecoderFunc(decodeMP3), sniffMP3, ".mp3")
	r.Register("ogg", DecoderFunc(decodeOgg), sniffOgg, ".ogg", ".oga")

	return r
}

func sniffWAV(h []byte) bool {
	return len(h) >= 12 && hasPrefix(h, "RIFF") && string(h[8:12]) == "WAVE"
}

func sniffOgg(h []byte) bool { return hasPrefix(h, "OggS") }

func sniffMP3(h []byte) bool {
	if hasPrefix(h, "ID3") {
		return true
	}

	// MPEG audio frame sync: 11 set bits.
	return len(h) >= 2 && h[0] == 0xFF && h[1]&0xE0 == 0xE0
}

func decodeWAV(r io.ReadSeeker) (core.Buffer, error) {
	b, _, err := wavio.Decode(r)

	return b, err
}

// go-mp3 always yields 16-bit little-endian stereo.
const mp3Channels = 2

func decodeMP3(r io.ReadSeeker) (core.Buffer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("%w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("failed to read MP3 frames: %w", err)
	}

	const frameBytes = 2 * mp3Channels
	frames := len(raw) / frameBytes
	samples := make([]float64, frames)
	for f := range frames {
		l := int16(binary.LittleEndian.Uint16(raw[f*frameBytes:]))
		rr := int16(binary.LittleEndian.Uint16(raw[f*frameBytes+2:]))
		samples[f] = (float64(l) + float64(rr)) / (2 * 32768)
	}

	return core.Buffer{Samples: samples, SampleRate: dec.SampleRate()}, nil
}

func decodeOgg(r io.ReadSeeker) (core.Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("%w", err)
	}

	if format.Channels <= 0 {
		return core.Buffer{}, fmt.Errorf("%w: %d channels", ErrNoAudio, format.Channels)
	}

	return core.Buffer{
		Samples:    mixDown(data, format.Channels),
		SampleRate: format.SampleRate,
	}, nil
}

// mixDown averages interleaved float32 frames into mono.
func mixDown(data []float32, channels int) []float64 {
	frames := len(data) / channels
	out := make([]float64, frames)
	inv := 1 / float64(channels)

	for f := range frames {
		sum := 0.0
		for _, v := range data[f*channels : (f+1)*channels] {
			sum += float64(v)
		}
		out[f] = sum * inv
	}

	return out
}
