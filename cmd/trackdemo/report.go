package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// renderReport formats one change line.
func renderReport(r report) string {
	return fmt.Sprintf("%s %s %s",
		frameStyle.Render(fmt.Sprintf("#%04d", r.frame)),
		nameStyle.Render(r.name),
		valueStyle.Render(fmt.Sprintf("rel %s size %s", r.relative, r.size)),
	)
}

// renderSummary formats the closing box printed after a run.
func renderSummary(s summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d frames, %d changes reported", s.frames, s.reports)))
	if s.faults > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d faults isolated (see log)", s.faults)))
	}
	for _, r := range s.final {
		b.WriteString("\n")
		b.WriteString(nameStyle.Render(r.name))
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("rel %s", r.relative))
	}
	return summaryStyle.Render(b.String())
}
