package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/slowverb/dsp/core"
)

const (
	// DefaultBitDepth is used when a caller passes 0.
	DefaultBitDepth = 16

	pcmFormat = 1

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

var (
	// ErrInvalidFile is returned when the input is not a RIFF/WAVE stream.
	ErrInvalidFile = errors.New("wavio: invalid WAV file")

	// ErrUnsupportedFormat is returned for non-PCM encodings.
	ErrUnsupportedFormat = errors.New("wavio: unsupported WAV encoding")

	// ErrUnsupportedBitDepth is returned for bit depths other than 16, 24 or 32.
	ErrUnsupportedBitDepth = errors.New("wavio: unsupported bit depth")
)

// Info describes the stream a buffer was decoded from.
type Info struct {
	Channels int
	BitDepth int
	Frames   int
}

func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return maxInt16, nil
	case 24:
		return maxInt24, nil
	case 32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}

// Decode reads a PCM WAV stream into a mono buffer. Multi-channel input is
// mixed down by averaging the channels of each frame.
func Decode(r io.ReadSeeker) (core.Buffer, Info, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return core.Buffer{}, Info{}, ErrInvalidFile
	}

	if dec.WavAudioFormat != pcmFormat {
		return core.Buffer{}, Info{}, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	bitDepth := int(dec.BitDepth)
	scale, err := fullScale(bitDepth)
	if err != nil {
		return core.Buffer{}, Info{}, err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return core.Buffer{}, Info{}, fmt.Errorf("wavio: failed to read PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	if channels <= 0 {
		return core.Buffer{}, Info{}, fmt.Errorf("%w: %d channels", ErrInvalidFile, channels)
	}

	sampleRate := int(dec.SampleRate)
	if sampleRate <= 0 {
		return core.Buffer{}, Info{}, fmt.Errorf("%w: sample rate %d", ErrInvalidFile, sampleRate)
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	inv := 1 / (scale * float64(channels))
	for f := range frames {
		sum := 0
		for _, v := range buf.Data[f*channels : (f+1)*channels] {
			sum += v
		}
		samples[f] = float64(sum) * inv
	}

	return core.Buffer{Samples: samples, SampleRate: sampleRate},
		Info{Channels: channels, BitDepth: bitDepth, Frames: frames}, nil
}

// Encode writes b as a mono PCM WAV stream. Samples are clipped to [-1, 1].
// A bitDepth of 0 selects DefaultBitDepth.
func Encode(w io.WriteSeeker, b core.Buffer, bitDepth int) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}

	scale, err := fullScale(bitDepth)
	if err != nil {
		return err
	}

	data := make([]int, len(b.Samples))
	for i, v := range b.Samples {
		if math.IsNaN(v) {
			v = 0
		}
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * scale))
	}

	enc := wav.NewEncoder(w, b.SampleRate, bitDepth, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: b.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: failed to write samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: failed to finalize WAV header: %w", err)
	}

	return nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (core.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("wavio: failed to open input file: %w", err)
	}
	defer f.Close()

	b, _, err := Decode(f)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("%s: %w", path, err)
	}

	return b, nil
}

// WriteFile encodes b to path, replacing any existing file.
func WriteFile(path string, b core.Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: failed to create output file: %w", err)
	}

	if err := Encode(f, b, bitDepth); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return err
	}

	return f.Close()
}
