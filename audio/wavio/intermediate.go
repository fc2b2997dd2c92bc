package wavio

import (
	"context"
	"fmt"
	"os"

	"github.com/cwbudde/slowverb/dsp/core"
)

// Intermediate writes a buffer to a temporary WAV file and reads it back.
// It satisfies the effect chain's intermediate hook; the result carries the
// quantization of BitDepth.
type Intermediate struct {
	// Dir holds the temporary file. Empty means os.TempDir.
	Dir string

	// BitDepth of the temporary file. Zero means DefaultBitDepth.
	BitDepth int

	// Keep leaves the file on disk instead of removing it.
	Keep bool

	// OnFile, if set, receives the path of every file written.
	OnFile func(path string)
}

// RoundTrip encodes in to disk and decodes it again.
func (im Intermediate) RoundTrip(ctx context.Context, in core.Buffer) (core.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return core.Buffer{}, err
	}

	f, err := os.CreateTemp(im.Dir, "slowverb-intermediate-*.wav")
	if err != nil {
		return core.Buffer{}, fmt.Errorf("wavio: failed to create intermediate file: %w", err)
	}
	path := f.Name()

	if !im.Keep {
		defer os.Remove(path)
	}

	if err := Encode(f, in, im.BitDepth); err != nil {
		_ = f.Close()

		return core.Buffer{}, err
	}

	if err := f.Close(); err != nil {
		return core.Buffer{}, fmt.Errorf("wavio: failed to close intermediate file: %w", err)
	}

	if im.OnFile != nil {
		im.OnFile(path)
	}

	if err := ctx.Err(); err != nil {
		return core.Buffer{}, err
	}

	out, err := ReadFile(path)
	if err != nil {
		return core.Buffer{}, err
	}

	if out.SampleRate != in.SampleRate || len(out.Samples) != len(in.Samples) {
		return core.Buffer{}, fmt.Errorf("%w: round trip changed %d@%d Hz into %d@%d Hz",
			ErrInvalidFile, len(in.Samples), in.SampleRate, len(out.Samples), out.SampleRate)
	}

	return out, nil
}
