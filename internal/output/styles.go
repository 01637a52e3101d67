package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Status marks used at the start of the final line of a run
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Styles holds the lipgloss styles for status lines
type Styles struct {
	Pass lipgloss.Style
	Fail lipgloss.Style
	URL  lipgloss.Style
}

// NewStyles creates styles that render in colour only when w is a terminal
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	if !IsTerminal(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Pass: r.NewStyle().Foreground(lipgloss.Color("2")),
		Fail: r.NewStyle().Foreground(lipgloss.Color("1")),
		URL:  r.NewStyle().Underline(true),
	}
}

// IsTerminal reports whether w writes to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
