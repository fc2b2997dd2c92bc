package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cwbudde/slowverb/dsp/core"
)

var (
	// ErrUnknownFormat is returned when no decoder matches the input.
	ErrUnknownFormat = errors.New("decode: unknown audio format")

	// ErrNoAudio is returned when a stream decodes to zero channels or an
	// invalid sample rate.
	ErrNoAudio = errors.New("decode: stream carries no audio")
)

// Decoder turns an encoded stream into a mono buffer.
type Decoder interface {
	Decode(r io.ReadSeeker) (core.Buffer, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.ReadSeeker) (core.Buffer, error)

// Decode calls f(r).
func (f DecoderFunc) Decode(r io.ReadSeeker) (core.Buffer, error) { return f(r) }

type entry struct {
	dec   Decoder
	exts  []string
	sniff func(header []byte) bool
}

// Registry holds decoders by format name.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]entry)}
}

// Register adds d under format. exts are matched case-insensitively against
// file extensions (with the dot); sniff, if non-nil, recognises the format
// from the first bytes of the stream.
func (r *Registry) Register(format string, d Decoder, sniff func([]byte) bool, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lower := make([]string, len(exts))
	for i, e := range exts {
		lower[i] = strings.ToLower(e)
	}

	r.formats[format] = entry{dec: d, exts: lower, sniff: sniff}
}

// Get returns the decoder registered for format.
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.formats[format]

	return e.dec, ok
}

// Formats returns the registered format names in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ForExtension returns the format whose extensions include ext.
func (r *Registry) ForExtension(ext string) (string, bool) {
	ext = strings.ToLower(ext)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.sortedLocked() {
		if slices.Contains(r.formats[name].exts, ext) {
			return name, true
		}
	}

	return "", false
}

// Sniff returns the format recognised from header.
func (r *Registry) Sniff(header []byte) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.sortedLocked() {
		if s := r.formats[name].sniff; s != nil && s(header) {
			return name, true
		}
	}

	return "", false
}

func (r *Registry) sortedLocked() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

const sniffLen = 12

// DecodeStream detects the format of rs from its leading bytes, falling
// back to hint (a file extension) when nothing matches.
func (r *Registry) DecodeStream(rs io.ReadSeeker, hint string) (core.Buffer, string, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return core.Buffer{}, "", fmt.Errorf("decode: failed to read header: %w", err)
	}
	header = header[:n]

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return core.Buffer{}, "", fmt.Errorf("decode: failed to rewind: %w", err)
	}

	format, ok := r.Sniff(header)
	if !ok {
		format, ok = r.ForExtension(hint)
	}
	if !ok {
		return core.Buffer{}, "", fmt.Errorf("%w: header % x, extension %q", ErrUnknownFormat, header, hint)
	}

	dec, _ := r.Get(format)

	b, err := dec.Decode(rs)
	if err != nil {
		return core.Buffer{}, format, fmt.Errorf("decode %s: %w", format, err)
	}

	if err := b.Validate(); err != nil {
		return core.Buffer{}, format, fmt.Errorf("decode %s: %w: %w", format, ErrNoAudio, err)
	}

	return b, format, nil
}

// DecodeFile opens path and decodes it.
func (r *Registry) DecodeFile(path string) (core.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Buffer{}, "", fmt.Errorf("decode: failed to open input file: %w", err)
	}
	defer f.Close()

	return r.DecodeStream(f, filepath.Ext(path))
}

// DecodeFile decodes path with the default registry.
func DecodeFile(path string) (core.Buffer, string, error) {
	return DefaultRegistry().DecodeFile(path)
}

func hasPrefix(header []byte, prefix string) bool {
	return bytes.HasPrefix(header, []byte(prefix))
}
