package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/slowverb/dsp/effectchain"
	"github.com/cwbudde/slowverb/stats/level"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(primaryColor).
	Padding(0, 1)

type row struct {
	key   string
	value string
}

func renderRows(title string, rows []row) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.key))
	}

	keyStyle := KeyStyle.Width(width + 1)

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, TitleStyle.MarginBottom(0).Render(title))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r.key), ValueStyle.Render(r.value)))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// RenderAnalysis formats a level report for the analyze command.
func RenderAnalysis(path, format string, r level.Report) string {
	dominant := "none"
	if r.HasDominant {
		dominant = fmt.Sprintf("%.1f Hz", r.DominantHz)
	}

	return renderRows(path, []row{
		{"Format", format},
		{"Sample rate", fmt.Sprintf("%d Hz", r.SampleRate)},
		{"Duration", fmt.Sprintf("%.3f s", r.Seconds)},
		{"Samples", fmt.Sprintf("%d", r.Length)},
		{"Peak", formatDB(r.Peak, r.Peak_dB)},
		{"RMS", formatDB(r.RMS, r.RMS_dB)},
		{"Crest factor", fmt.Sprintf("%.2f dB", r.CrestFactor_dB)},
		{"DC offset", fmt.Sprintf("%.6f", r.DC)},
		{"Dominant", dominant},
	})
}

// ProcessSummary describes one processing run.
type ProcessSummary struct {
	Input   string
	Output  string
	Encoded string
	Params  effectchain.Params
	Before  level.Report
	After   level.Report
	Result  effectchain.Result
}

// RenderProcessSummary formats the outcome of the process command.
func RenderProcessSummary(s ProcessSummary) string {
	rows := []row{
		{"Input", s.Input},
		{"Output", s.Output},
	}
	if s.Encoded != "" {
		rows = append(rows, row{"Encoded", s.Encoded})
	}

	p := s.Params
	rows = append(rows,
		row{"Chain", fmt.Sprintf("speed %.2fx, low-pass %.0f Hz, pitch %+.1f st, decay %.2f s",
			p.PlaybackSpeedFactor, p.LowPassCutoffHz, p.PitchShiftSemitones, p.ReverbDecaySeconds)},
		row{"Duration", fmt.Sprintf("%.3f s -> %.3f s", s.Before.Seconds, s.After.Seconds)},
		row{"Peak", fmt.Sprintf("%s -> %s", formatDB(s.Before.Peak, s.Before.Peak_dB), formatDB(s.After.Peak, s.After.Peak_dB))},
	)

	for _, st := range s.Result.Trace {
		rows = append(rows, row{"  " + st.Stage, fmt.Sprintf("%d samples in %s", st.Samples, st.Elapsed.Round(time.Microsecond))})
	}

	out := renderRows("Slowed + reverb", rows)

	if len(s.Result.Warnings) > 0 {
		var sb strings.Builder
		sb.WriteString(out)
		sb.WriteString("\n")
		for _, w := range s.Result.Warnings {
			sb.WriteString(WarnStyle.Render("Warning:"))
			sb.WriteString(" ")
			sb.WriteString(w.String())
			sb.WriteString("\n")
		}

		return strings.TrimRight(sb.String(), "\n")
	}

	return out
}

func formatDB(linear, db float64) string {
	return fmt.Sprintf("%.4f (%.1f dBFS)", linear, db)
}
