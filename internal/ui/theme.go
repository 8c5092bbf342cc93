package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)

	Front = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cPrimary).Padding(0, 1)
	Back  = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cGood).Padding(0, 1)
)

func Heading(title string) string {
	return Title.Render(title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// QualityText colours a 0-5 rating by whether it passed.
func QualityText(quality int) string {
	s := fmt.Sprintf("%d", quality)
	switch {
	case quality >= 4:
		return Good.Render(s)
	case quality == 3:
		return Warn.Render(s)
	default:
		return Bad.Render(s)
	}
}

// NextReviewText describes when a card is due relative to now.
func NextReviewText(next, now time.Time) string {
	if !next.After(now) {
		return "now"
	}
	return strings.TrimSpace(humanize.RelTime(next, now, "ago", "from now"))
}

// Error formats an error for stderr.
func Error(err error) string {
	return Bad.Render("error: " + err.Error())
}
