package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultPath is the encoder binary looked up when Config.Path is empty.
const DefaultPath = "ffmpeg"

var (
	// ErrNotFound is returned when the encoder binary cannot be resolved.
	ErrNotFound = errors.New("encoder: binary not found")

	// ErrEncodeFailed is returned when the encoder exits unsuccessfully.
	ErrEncodeFailed = errors.New("encoder: encoding failed")

	// ErrSamePath is returned when input and output name the same file.
	ErrSamePath = errors.New("encoder: input and output are the same file")
)

// Config selects the external encoder.
type Config struct {
	// Path is a binary name looked up in PATH or an explicit path.
	Path string

	// Overwrite appends -y so existing outputs are replaced.
	Overwrite bool

	// ExtraArgs are inserted between the input and output arguments.
	ExtraArgs []string
}

// Encoder runs an external transcoder as a blocking subprocess.
type Encoder struct {
	path      string
	overwrite bool
	extra     []string
}

// New resolves cfg.Path once and returns an Encoder bound to it.
func New(cfg Config) (*Encoder, error) {
	name := cfg.Path
	if name == "" {
		name = DefaultPath
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}

	return &Encoder{
		path:      path,
		overwrite: cfg.Overwrite,
		extra:     append([]string(nil), cfg.ExtraArgs...),
	}, nil
}

// Path returns the resolved binary.
func (e *Encoder) Path() string { return e.path }

// Args returns the argument list passed to the binary:
// -i <in> [extra...] <out> [-y].
func (e *Encoder) Args(inPath, outPath string) []string {
	args := make([]string, 0, 4+len(e.extra))
	args = append(args, "-i", inPath)
	args = append(args, e.extra...)
	args = append(args, outPath)
	if e.overwrite {
		args = append(args, "-y")
	}

	return args
}

// Encode transcodes inPath to outPath and waits for the process to exit.
// The output format follows outPath's extension.
func (e *Encoder) Encode(ctx context.Context, inPath, outPath string) error {
	if inPath == outPath {
		return fmt.Errorf("%w: %s", ErrSamePath, inPath)
	}

	//nolint:gosec // the binary is chosen by the operator
	cmd := exec.CommandContext(ctx, e.path, e.Args(inPath, outPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fmt.Errorf("%w: %w: %s", ErrEncodeFailed, err, lastLine(stderr.String()))
	}

	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}

	return s
}
