package kiosk

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/tick/internal/attendance"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	clockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("69")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// SeverityStyle colours a finding by severity.
func SeverityStyle(s attendance.Severity) lipgloss.Style {
	switch s {
	case attendance.High:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case attendance.Medium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("228"))
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tick") + "  " + clockStyle.Render(m.Clock.Format("Mon 02 Jan 2006  15:04:05")) + "\n\n")

	if m.Employee == "" {
		b.WriteString("Employee ID: " + inputStyle.Render(m.Input+"▏") + "\n")
		b.WriteString(helpStyle.Render("enter: confirm • esc: clear • ctrl+c: quit") + "\n")
	} else {
		b.WriteString("Employee: " + inputStyle.Render(m.display()) + "\n")
		if m.Busy {
			b.WriteString(helpStyle.Render("recording…") + "\n")
		} else {
			b.WriteString(helpStyle.Render("i: clock in • o: clock out • b: break start • e: break end • esc: cancel") + "\n")
		}
	}

	if m.Err != nil {
		b.WriteString("\n" + errStyle.Render("Error: "+m.Err.Error()) + "\n")
	}
	if m.Last != "" {
		b.WriteString("\n" + okStyle.Render("✓ "+m.Last) + "\n")
	}
	if m.EvalErr != nil {
		b.WriteString(errStyle.Render("Recorded, but findings are unavailable: "+m.EvalErr.Error()) + "\n")
	}
	if len(m.Findings) > 0 {
		var lines []string
		for _, f := range m.Findings {
			lines = append(lines, SeverityStyle(f.Severity).Render(strings.ToUpper(string(f.Severity)))+"  "+f.Description)
		}
		b.WriteString("\n" + boxStyle.Render(strings.Join(lines, "\n")) + "\n")
	}
	return b.String()
}
