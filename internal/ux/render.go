package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// Tone colors a row value in styled output.
type Tone int

const (
	ToneNone Tone = iota
	ToneOK
	ToneWarn
	ToneError
)

// Row is one key/value line of a section.
type Row struct {
	Key   string
	Value string
	Tone  Tone
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// Sectioned is implemented by values with a text rendering.
type Sectioned interface {
	Sections() []Section
}

// RenderSections renders sections with aligned keys. noColor disables styling.
func RenderSections(sections []Section, noColor bool) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		width := 0
		for _, r := range s.Rows {
			width = max(width, len(r.Key))
		}

		if noColor {
			b.WriteString(s.Title + "\n")
		} else {
			b.WriteString(titleStyle.Render(s.Title) + "\n")
		}
		for _, r := range s.Rows {
			key := r.Key + ":" + strings.Repeat(" ", width-len(r.Key))
			if noColor {
				b.WriteString("  " + key + " " + r.Value + "\n")
				continue
			}
			b.WriteString("  " + keyStyle.Render(key) + " " + toneStyle(r.Tone).Render(r.Value) + "\n")
		}
	}
	return b.String()
}

func toneStyle(t Tone) lipgloss.Style {
	switch t {
	case ToneOK:
		return okStyle
	case ToneWarn:
		return warnStyle
	case ToneError:
		return errStyle
	default:
		return valueStyle
	}
}
