package encoder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder writes a shell script that records its arguments and copies
// the input to the output, or fails when the input is named "fail".
func fakeEncoder(t *testing.T) (binary, argsFile string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script encoder requires a POSIX shell")
	}

	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	binary = filepath.Join(dir, "fake-ffmpeg")

	script := `#!/bin/sh
printf '%s\n' "$@" > "` + argsFile + `"
case "$2" in
  *fail*) echo "boom: bad input" >&2; exit 1 ;;
esac
cp "$2" "$3"
`
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))

	return binary, argsFile
}

func TestNewResolvesBinary(t *testing.T) {
	t.Parallel()

	binary, _ := fakeEncoder(t)

	enc, err := New(Config{Path: binary})
	require.NoError(t, err)
	assert.Equal(t, binary, enc.Path())

	_, err = New(Config{Path: filepath.Join(t.TempDir(), "no-such-encoder")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArgsOrder(t *testing.T) {
	t.Parallel()

	enc := &Encoder{path: "ffmpeg", overwrite: true}
	assert.Equal(t, []string{"-i", "in.wav", "out.mp3", "-y"}, enc.Args("in.wav", "out.mp3"))

	enc = &Encoder{path: "ffmpeg", extra: []string{"-b:a", "192k"}}
	assert.Equal(t, []string{"-i", "in.wav", "-b:a", "192k", "out.mp3"}, enc.Args("in.wav", "out.mp3"))
}

func TestEncodeRunsSubprocess(t *testing.T) {
	t.Parallel()

	binary, argsFile := fakeEncoder(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.mp3")
	require.NoError(t, os.WriteFile(in, []byte("pcm"), 0o600))

	enc, err := New(Config{Path: binary, Overwrite: true})
	require.NoError(t, err)
	require.NoError(t, enc.Encode(context.Background(), in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "pcm", string(data))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-i\n"+in+"\n"+out+"\n-y\n", string(args))
}

func TestEncodeFailure(t *testing.T) {
	t.Parallel()

	binary, _ := fakeEncoder(t)
	dir := t.TempDir()

	enc, err := New(Config{Path: binary})
	require.NoError(t, err)

	err = enc.Encode(context.Background(), filepath.Join(dir, "fail.wav"), filepath.Join(dir, "out.mp3"))
	require.ErrorIs(t, err, ErrEncodeFailed)
	assert.Contains(t, err.Error(), "boom: bad input")
}

func TestEncodeRejectsSamePath(t *testing.T) {
	t.Parallel()

	enc := &Encoder{path: "ffmpeg"}
	require.ErrorIs(t, enc.Encode(context.Background(), "a.wav", "a.wav"), ErrSamePath)
}

func TestEncodeCanceled(t *testing.T) {
	t.Parallel()

	binary, _ := fakeEncoder(t)
	enc, err := New(Config{Path: binary})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = enc.Encode(ctx, "in.wav", "out.mp3")
	require.ErrorIs(t, err, context.Canceled)
}
