package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/dashboard"
	"github.com/kingrea/claimdesk/internal/session"
)

type adminTab int

const (
	tabOverview adminTab = iota
	tabClaims
	tabLogs
	tabAnalytics
)

var adminTabs = []adminTab{tabOverview, tabClaims, tabLogs, tabAnalytics}

func (t adminTab) String() string {
	switch t {
	case tabClaims:
		return "Claims"
	case tabLogs:
		return "Logs"
	case tabAnalytics:
		return "Analytics"
	default:
		return "Overview"
	}
}

// logTableLimit caps how many log entries the logs tab loads.
const logTableLimit = 200

func (a *App) rebuildLogTable() {
	entries, _ := a.logbook.Tail(logTableLimit)
	rows := make([]table.Row, 0, len(entries))
	// Newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		rows = append(rows, table.Row{e.Timestamp.Format("15:04:05"), string(e.Level), e.Message, e.Source})
	}
	a.logTable.SetRows(rows)
	a.logTable.SetCursor(0)
}

func (a *App) updateAdmin(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		a.adminTab = adminTabs[(int(a.adminTab)+len(adminTabs)-1)%len(adminTabs)]
		return nil
	case "right", "l", "tab":
		a.adminTab = adminTabs[(int(a.adminTab)+1)%len(adminTabs)]
		return nil
	}
	switch a.adminTab {
	case tabOverview, tabClaims:
		return a.updateClaimTable(msg)
	case tabLogs:
		if msg.String() == "r" {
			a.rebuildLogTable()
			return nil
		}
		var cmd tea.Cmd
		a.logTable, cmd = a.logTable.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) renderAdminDashboard() string {
	stats := dashboard.ForAdmin(a.claimList)
	tabs := make([]string, 0, len(adminTabs))
	for _, tab := range adminTabs {
		style := tabStyle
		if tab == a.adminTab {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(tab.String()))
	}

	var body string
	switch a.adminTab {
	case tabClaims:
		body = panel(fmt.Sprintf("All Claims (%d)", stats.TotalClaims), a.claimTable.View(), true)
	case tabLogs:
		_, total := a.logbook.Tail(1)
		body = panel(fmt.Sprintf("System Logs (%d)", total), a.logTable.View(), true) +
			"\n" + mutedStyle.Render("r: reload")
	case tabAnalytics:
		body = renderAnalytics(stats, a.contentWidth())
	default:
		cards := statsRow(
			statsCard("Total Claims", stats.TotalClaims, ""),
			statsCard("Pending HITL", stats.PendingHITL, ""),
			statsCard("CAG Corrections", stats.Corrections, ""),
			statsCard("Resolved", stats.Resolved, "Approved or rejected"),
			statsCard("Avg Confidence", fmt.Sprintf("%d%%", stats.AverageConfidence), ""),
		)
		body = lipgloss.JoinVertical(lipgloss.Left,
			cards,
			"",
			panel("Claims", a.claimTable.View(), true),
			panel("Recent Activity", a.renderLogPanel(), false),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Admin Dashboard"),
		subtitleStyle.Render("System overview and analytics"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		body,
	)
}

func (a *App) renderLogPanel() string {
	entries, total := a.logbook.Tail(logPanelLines)
	if total == 0 {
		return mutedStyle.Render("No log entries yet")
	}
	lines := make([]string, 0, len(entries)+1)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		level := lipgloss.NewStyle().Foreground(logLevelColors[e.Level]).Render(fmt.Sprintf("%-7s", e.Level))
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			mutedStyle.Render(e.Timestamp.Format("15:04:05")), level, e.Message, mutedStyle.Render("· "+e.Source)))
	}
	if total > len(entries) {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("… %d older entries", total-len(entries))))
	}
	return strings.Join(lines, "\n")
}

func renderAnalytics(stats dashboard.Admin, width int) string {
	chartWidth := max(10, width/2-20)

	dayLabels := make([]string, 0, len(stats.ClaimsPerDay))
	dayValues := make([]int, 0, len(stats.ClaimsPerDay))
	for _, d := range stats.ClaimsPerDay {
		dayLabels = append(dayLabels, shortDay(d.Day))
		dayValues = append(dayValues, d.Claims)
	}

	var trend strings.Builder
	if len(stats.CorrectionTrends) == 0 {
		trend.WriteString(mutedStyle.Render("no data"))
	}
	for i, p := range stats.CorrectionTrends {
		if i > 0 {
			trend.WriteString("\n")
		}
		fmt.Fprintf(&trend, "%-6s corrections %-3d errors %d", shortDay(p.Day), p.Corrections, p.Errors)
	}

	dist := stats.Distribution
	distribution := barChart(
		[]string{"High", "Medium", "Low"},
		[]int{dist.High, dist.Medium, dist.Low},
		chartWidth,
	)

	rates := statsRow(
		statsCard("Auto-Approval", fmt.Sprintf("%d%%", stats.Rates.AutoApproval), ""),
		statsCard("HITL Escalation", fmt.Sprintf("%d%%", stats.Rates.HITLEscalation), ""),
		statsCard("Rejection", fmt.Sprintf("%d%%", stats.Rates.Rejection), ""),
		statsCard("CAG Correction", fmt.Sprintf("%d%%", stats.Rates.CAGCorrection), ""),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			panel("Claims per Day", barChart(dayLabels, dayValues, chartWidth), false),
			"  ",
			panel("Corrections & Errors", trend.String(), false),
		),
		panel("Confidence Distribution (%)", distribution, false),
		rates,
	)
}

// shortDay trims a YYYY-MM-DD key to MM-DD.
func shortDay(day string) string {
	if len(day) == len("2006-01-02") {
		return day[5:]
	}
	return day
}

func (a *App) renderAdminUsers() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("User Management"),
		subtitleStyle.Render(fmt.Sprintf("%d demo accounts", len(session.Roles))),
		"",
		panel("Users", a.userTable.View(), true),
	)
}

func (a *App) renderAdminSettings() string {
	data, err := a.config.YAML()
	body := strings.TrimRight(string(data), "\n")
	if err != nil {
		body = errorTextStyle.Render(err.Error())
	}
	api := "disabled"
	if a.config.APIEnabled() {
		api = "http://" + a.config.APIAddress()
	}
	info := fmt.Sprintf("Config file: %s\nSystem log:  %s\nAPI:         %s",
		a.config.ProjectConfigPath(), a.config.SystemLogPath(), api)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("System Settings"),
		subtitleStyle.Render("Effective configuration (read-only)"),
		"",
		panel("Paths", info, false),
		panel("config.yaml", body, true),
	)
}
