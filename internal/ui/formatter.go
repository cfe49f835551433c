// Package ui renders command output for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type Formatter struct {
	colored    bool
	timeFormat string
	loc        *time.Location
}

func NewFormatter(colored bool, timeFormat string) *Formatter {
	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04"
	}
	return &Formatter{
		colored:    colored,
		timeFormat: timeFormat,
		loc:        time.Local,
	}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓") + " " + msg
}

func (f *Formatter) FormatFailure(msg string) string {
	return f.render(ErrorStyle, "✗") + " " + msg
}

func (f *Formatter) FormatWarning(msg string) string {
	return f.render(WarningStyle, msg)
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatDim(msg string) string {
	return f.render(DimStyle, msg)
}

// FormatTime renders t in the configured layout and local zone.
func (f *Formatter) FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(f.loc).Format(f.timeFormat)
}

// field renders an aligned "Label: value" line.
func (f *Formatter) field(label, value string) string {
	return f.render(LabelStyle, fmt.Sprintf("%-12s ", label+":")) + value
}

// renderMarkdown renders text with glamour when colors are enabled and
// returns it unchanged otherwise.
func (f *Formatter) renderMarkdown(text string) string {
	if !f.colored {
		return text
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(rendered)
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1).
			Render(content)
		return HeaderStyle.Render(title) + "\n" + box
	}
	return title + "\n" + content
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
