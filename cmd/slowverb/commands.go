package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/slowverb/audio/decode"
	"github.com/cwbudde/slowverb/audio/encoder"
	"github.com/cwbudde/slowverb/audio/wavio"
	"github.com/cwbudde/slowverb/dsp/effectchain"
	"github.com/cwbudde/slowverb/internal/cli"
	"github.com/cwbudde/slowverb/stats/level"
)

// ProcessCmd runs the effect chain over one file.
type ProcessCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Source audio (wav, mp3, ogg)."`
	Output string `short:"o" required:"" type:"path" help:"Destination WAV file."`

	Speed     float64 `default:"0.8" help:"Playback speed factor (1 = unchanged)."`
	Cutoff    float64 `default:"3000" help:"Low-pass cutoff in Hz."`
	Order     int     `default:"2" help:"Low-pass Butterworth order (1-8)."`
	Semitones float64 `default:"-1" help:"Pitch shift in semitones."`
	Decay     float64 `default:"0.3" help:"Reverb decay in seconds."`

	Intermediate bool   `default:"true" negatable:"" help:"Round-trip through a WAV file between the filter and pitch stages."`
	KeepTemp     bool   `help:"Keep the intermediate WAV file."`
	TempDir      string `type:"path" help:"Directory for the intermediate WAV file."`
	BitDepth     int    `default:"16" help:"Bit depth of the output and intermediate WAV files (16, 24, 32)."`

	Encode  string        `type:"path" help:"Also transcode the result to this file with the external encoder."`
	FFmpeg  string        `name:"ffmpeg" default:"ffmpeg" help:"External encoder binary."`
	Timeout time.Duration `default:"0s" help:"Abort after this long (0 disables)."`
}

// Params returns the effect parameters selected on the command line.
func (c *ProcessCmd) Params() effectchain.Params {
	return effectchain.Params{
		PlaybackSpeedFactor: c.Speed,
		LowPassCutoffHz:     c.Cutoff,
		PitchShiftSemitones: c.Semitones,
		ReverbDecaySeconds:  c.Decay,
		LowPassOrder:        c.Order,
	}
}

// Run executes the command.
func (c *ProcessCmd) Run(g *Globals, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// Resolve the encoder before doing any work so a missing binary fails fast.
	var enc *encoder.Encoder
	if c.Encode != "" {
		var err error
		enc, err = encoder.New(encoder.Config{Path: c.FFmpeg, Overwrite: true})
		if err != nil {
			return err
		}
	}

	in, format, err := decode.DecodeFile(c.Input)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"input":       c.Input,
		"format":      format,
		"sample_rate": in.SampleRate,
		"samples":     len(in.Samples),
	}).Info("decoded input")

	opts := []effectchain.Option{effectchain.WithLogger(log)}
	if c.Intermediate {
		opts = append(opts, effectchain.WithIntermediate(wavio.Intermediate{
			Dir:      c.TempDir,
			BitDepth: c.BitDepth,
			Keep:     c.KeepTemp,
			OnFile: func(path string) {
				log.WithField("path", path).Debug("wrote intermediate file")
			},
		}))
	}

	p := c.Params()
	res, err := effectchain.New(opts...).Process(ctx, in, p)
	if err != nil {
		return err
	}

	if err := wavio.WriteFile(c.Output, res.Buffer, c.BitDepth); err != nil {
		return err
	}
	log.WithField("output", c.Output).Info("wrote output")

	if enc != nil {
		if err := enc.Encode(ctx, c.Output, c.Encode); err != nil {
			return err
		}
		log.WithField("encoded", c.Encode).Info("encoded output")
	}

	before, err := level.Analyze(in)
	if err != nil {
		return err
	}

	after, err := level.Analyze(res.Buffer)
	if err != nil {
		return err
	}

	fmt.Fprintln(g.Stdout, cli.RenderProcessSummary(cli.ProcessSummary{
		Input:   c.Input,
		Output:  c.Output,
		Encoded: c.Encode,
		Params:  p,
		Before:  before,
		After:   after,
		Result:  res,
	}))

	return nil
}

// AnalyzeCmd prints statistics of one file.
type AnalyzeCmd struct {
	Input string `arg:"" type:"existingfile" help:"Audio file to analyse."`
}

// Run executes the command.
func (c *AnalyzeCmd) Run(g *Globals, _ *logrus.Logger) error {
	b, format, err := decode.DecodeFile(c.Input)
	if err != nil {
		return err
	}

	r, err := level.Analyze(b)
	if err != nil {
		return err
	}

	fmt.Fprintln(g.Stdout, cli.RenderAnalysis(c.Input, format, r))

	return nil
}

func reportError(w io.Writer, err error) {
	var chainErr *effectchain.Error
	if errors.As(err, &chainErr) {
		if chainErr.Kind == effectchain.KindCanceled {
			cli.PrintError(w, "processing canceled")

			return
		}
	}

	cli.PrintError(w, err.Error())
}
