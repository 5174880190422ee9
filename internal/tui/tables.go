package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/dashboard"
	"github.com/kingrea/claimdesk/internal/review"
	"github.com/kingrea/claimdesk/internal/session"
)

const dateLayout = "2006-01-02"

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#3A5BA0")).
		Bold(false)
	t.SetStyles(styles)
	return t
}

func claimColumns(admin bool) []table.Column {
	if admin {
		return []table.Column{
			{Title: "Claim ID", Width: 9},
			{Title: "Policy Num", Width: 16},
			{Title: "Status", Width: 12},
			{Title: "Adjuster", Width: 16},
			{Title: "Created", Width: 11},
		}
	}
	return []table.Column{
		{Title: "Claim ID", Width: 9},
		{Title: "Policy Num", Width: 16},
		{Title: "Type", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Confidence", Width: 11},
		{Title: "Flags", Width: 6},
		{Title: "Created", Width: 11},
	}
}

func userColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Name", Width: 18},
		{Title: "Email", Width: 24},
		{Title: "Role", Width: 10},
	}
}

func logColumns() []table.Column {
	return []table.Column{
		{Title: "Time", Width: 9},
		{Title: "Level", Width: 8},
		{Title: "Message", Width: 46},
		{Title: "Source", Width: 16},
	}
}

func claimRow(c claims.Claim, admin bool) table.Row {
	created := c.CreatedAt.Format(dateLayout)
	if admin {
		adjuster := c.AssignedAdjuster
		if adjuster == "" {
			adjuster = "-"
		}
		return table.Row{c.ID, c.PolicyNumber, c.Status.Label(), adjuster, created}
	}
	return table.Row{
		c.ID,
		c.PolicyNumber,
		c.ClaimType.Label(),
		c.Status.Label(),
		fmt.Sprintf("%d%%", c.Confidence),
		fmt.Sprint(c.FlagsCount),
		created,
	}
}

// tableClaims returns the claims listed on the current screen.
func (a *App) tableClaims() []claims.Claim {
	switch a.state {
	case stateCustomerDashboard:
		return dashboard.ForCustomer(a.claimList).Recent
	case stateAdjusterDashboard:
		return dashboard.PendingReview(a.claimList)
	case stateAdjusterHITL:
		return dashboard.Filter(a.claimList, func(c claims.Claim) bool { return c.Status == claims.StatusHITLReview })
	case stateAdjusterCAG:
		return dashboard.Filter(a.claimList, func(c claims.Claim) bool { return review.CountPending(c.Corrections) > 0 })
	default:
		return a.claimList
	}
}

func (a *App) rebuildTables() {
	admin := a.state == stateAdminDashboard
	list := a.tableClaims()
	rows := make([]table.Row, 0, len(list))
	for _, c := range list {
		rows = append(rows, claimRow(c, admin))
	}
	// Columns must change before rows so row widths match.
	a.claimTable.SetRows(nil)
	a.claimTable.SetColumns(claimColumns(admin))
	a.claimTable.SetRows(rows)
	a.claimTable.SetCursor(0)

	if a.state == stateAdminUsers {
		users := make([]table.Row, 0, len(session.Roles))
		directory := session.DefaultDirectory()
		for _, role := range session.Roles {
			u := directory[role]
			users = append(users, table.Row{u.ID, u.Name, u.Email, role.Label()})
		}
		a.userTable.SetRows(users)
	}
	if a.state == stateAdminDashboard {
		a.rebuildLogTable()
	}
}

func (a *App) selectedClaimID() string {
	row := a.claimTable.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func (a *App) updateClaimTable(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if id := a.selectedClaimID(); id != "" {
			return a.navigate(session.ClaimPath(id))
		}
		return nil
	case "u":
		if a.session.Snapshot().Can(session.CapUploadClaims) {
			return a.navigate(session.PathCustomerUpload)
		}
	}
	var cmd tea.Cmd
	a.claimTable, cmd = a.claimTable.Update(msg)
	return cmd
}
