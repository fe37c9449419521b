// Package output renders styled terminal reports.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/yegorvk/vcam/internal/devtools"
	"github.com/yegorvk/vcam/internal/shared"
)

// ReportRenderer formats tool-run results for the terminal.
type ReportRenderer struct {
	titleStyle lipgloss.Style
	passStyle  lipgloss.Style
	failStyle  lipgloss.Style
	dimStyle   lipgloss.Style
	indent     string
}

// NewReportRenderer creates a renderer. Styling is applied only when
// stdout is a terminal.
func NewReportRenderer() *ReportRenderer {
	return NewReportRendererStyled(StdoutIsTerminal())
}

// NewReportRendererStyled creates a renderer with styling forced on or off.
func NewReportRendererStyled(styled bool) *ReportRenderer {
	r := &ReportRenderer{indent: "  "}
	if styled {
		r.titleStyle = lipgloss.NewStyle().Bold(true)
		r.passStyle = shared.SuccessStyle
		r.failStyle = shared.ErrorStyle
		r.dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	}
	return r
}

// Render formats a title and one line per result, aligning statuses on the
// widest command.
func (r *ReportRenderer) Render(title string, results []devtools.Result) string {
	var sb strings.Builder

	if title != "" {
		sb.WriteString(r.titleStyle.Render(title))
		sb.WriteString("\n")
	}

	maxCmd := 0
	for _, res := range results {
		if w := runewidth.StringWidth(res.Command()); w > maxCmd {
			maxCmd = w
		}
	}

	for _, res := range results {
		sb.WriteString(r.indent)
		sb.WriteString(runewidth.FillRight(res.Command(), maxCmd))
		sb.WriteString("  ")
		sb.WriteString(r.status(res))
		sb.WriteString("\n")

		// Offending output, indented under the failing command.
		if !res.Success {
			for _, line := range outputLines(res) {
				sb.WriteString(r.indent)
				sb.WriteString(r.indent)
				sb.WriteString(r.dimStyle.Render(line))
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

func (r *ReportRenderer) status(res devtools.Result) string {
	switch {
	case res.Success:
		return r.passStyle.Render("ok")
	case res.TimedOut:
		return r.failStyle.Render("timeout")
	case res.Err != nil:
		return r.failStyle.Render(fmt.Sprintf("error: %v", res.Err))
	default:
		return r.failStyle.Render(fmt.Sprintf("failed (exit %d)", res.ExitCode))
	}
}

func outputLines(res devtools.Result) []string {
	var lines []string
	for _, chunk := range []string{res.Stdout, res.Stderr} {
		for _, line := range strings.Split(strings.TrimRight(chunk, "\n"), "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
// Callers skip styling when it isn't.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
