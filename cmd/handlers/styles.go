package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D4A373"))
	ruleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// field renders an aligned "label value" line.
func field(label string, value any) string {
	return labelStyle.Render(label) + fmt.Sprint(value)
}

// yesNo renders a boolean in the CLI's colors.
func yesNo(v bool) string {
	if v {
		return okStyle.Render("sim")
	}
	return warnStyle.Render("não")
}

func box(title string, lines ...string) string {
	body := titleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return boxStyle.Render(body)
}
