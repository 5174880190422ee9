package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/dashboard"
)

func (a *App) renderCustomerDashboard() string {
	stats := dashboard.ForCustomer(a.claimList)
	cards := statsRow(
		statsCard("Total Claims", stats.Total, "All time"),
		statsCard("Pending", stats.Pending, "In processing or review"),
		statsCard("Approved", stats.Approved, ""),
		statsCard("Rejected", stats.Rejected, ""),
	)
	recent := panel(fmt.Sprintf("Recent Claims (%d)", len(stats.Recent)), a.claimTable.View(), true)
	cta := mutedStyle.Render("Press u to upload a new claim.")
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("My Dashboard"),
		subtitleStyle.Render("Track the status of your insurance claims"),
		"",
		cards,
		"",
		recent,
		cta,
	)
}

func (a *App) renderCustomerClaims() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("My Claims"),
		subtitleStyle.Render(fmt.Sprintf("%d claims on file", len(a.claimList))),
		"",
		panel("Claims", a.claimTable.View(), true),
	)
}
