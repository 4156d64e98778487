package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gmplayout/pkg/compliance"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// FindingsModel - Interactive compliance report browser
// =============================================================================

// FindingsModel is the bubbletea model for browsing a compliance report.
// Failures are listed first, most severe on top; "f" hides passed checks.
type FindingsModel struct {
	Title      string
	Report     *compliance.Report
	Results    []compliance.CheckResult
	Cursor     int
	Offset     int
	Height     int
	FailedOnly bool
}

// NewFindingsModel creates a findings browser for rep.
func NewFindingsModel(title string, rep *compliance.Report) FindingsModel {
	m := FindingsModel{Title: title, Report: rep, Height: 12}
	m.Results = m.visible()
	return m
}

// visible returns the results to list: failures by severity, then passes
// unless FailedOnly is set.
func (m FindingsModel) visible() []compliance.CheckResult {
	out := m.Report.Failures()
	if m.FailedOnly {
		return out
	}
	for _, r := range m.Report.Results {
		if r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func (m FindingsModel) Init() tea.Cmd {
	return nil
}

func (m FindingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Results)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "f":
			m.FailedOnly = !m.FailedOnly
			m.Results = m.visible()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail pane.
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

// Selected returns the result under the cursor.
func (m FindingsModel) Selected() (compliance.CheckResult, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Results) {
		return compliance.CheckResult{}, false
	}
	return m.Results[m.Cursor], true
}

func (m FindingsModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s · %s · %d/100", m.Title, m.Report.Jurisdiction, m.Report.Score)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  f failed only  q quit"))
	b.WriteString("\n\n")

	if len(m.Results) == 0 {
		b.WriteString(StyleSuccess.Render("  No failed checks."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Results))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.Results[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := iconSuccess
		if !r.Passed {
			status = iconError
		}
		rows = append(rows, []string{cursor, status, r.RuleID, string(r.Severity), r.Citation})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Rule", "Severity", "Citation").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			idx := m.Offset + row
			if idx >= len(m.Results) {
				return lipgloss.NewStyle()
			}
			r := m.Results[idx]
			base := lipgloss.NewStyle()
			if !r.Passed {
				base = severityStyle(r.Severity)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Results))))
	b.WriteString("\n")

	if r, ok := m.Selected(); ok {
		b.WriteString(detailStyle.Render(findingDetail(r)))
		b.WriteString("\n")
	}
	return b.String()
}

// findingDetail formats one result for the detail pane.
func findingDetail(r compliance.CheckResult) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(r.RuleID))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(r.Citation))
	b.WriteString("\n")
	b.WriteString(r.Message)
	if len(r.Affected) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("Affected: "))
		b.WriteString(strings.Join(r.Affected, ", "))
	}
	if !r.Passed && r.Remediation != "" {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("Remediation: "))
		b.WriteString(r.Remediation)
		if r.AutoFix {
			b.WriteString(StyleSuccess.Render(" (auto-fix available)"))
		}
	}
	return b.String()
}
