// Command slowverb applies a "slowed + reverb" effect chain to audio files.
//
// Usage:
//
//	slowverb process <input> -o <output.wav> [flags]
//	slowverb analyze <input>
//
// Examples:
//
//	slowverb process song.mp3 -o song-slowed.wav
//	slowverb process song.mp3 -o out.wav --speed 0.85 --semitones -2 --encode out.mp3
//	slowverb --config slowverb.json process song.ogg -o out.wav
//	slowverb analyze out.wav
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/cwbudde/slowverb/internal/cli"
	"github.com/cwbudde/slowverb/internal/logging"
)

var version = "0.1.0"

const description = "Slowed + reverb audio processor"

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel string           `help:"Log level (debug, info, warn, error)." default:"warn" enum:"debug,info,warn,error"`
	Config   kong.ConfigFlag  `short:"c" help:"Load flag values from a JSON file."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Process ProcessCmd `cmd:"" help:"Apply the effect chain to an audio file."`
	Analyze AnalyzeCmd `cmd:"" help:"Print level and pitch statistics of an audio file."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cliArgs := &CLI{Globals: Globals{Stdout: stdout, Stderr: stderr}}

	exitCode := -1
	parser, err := kong.New(cliArgs,
		kong.Name("slowverb"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Configuration(kong.JSON),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Help(cli.StyledHelpPrinter(description)),
	)
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	ctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	log, err := logging.New(cliArgs.LogLevel, stderr)
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	if err := ctx.Run(&cliArgs.Globals, log); err != nil {
		reportError(stderr, err)
		return 1
	}

	return 0
}
