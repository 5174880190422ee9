package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/dashboard"
)

// decidedToday counts claims given a disposition in this run on the clock's date.
func (a *App) decidedToday() int {
	now := a.clock()
	y, m, d := now.Date()
	n := 0
	for _, decision := range a.decisions {
		dy, dm, dd := decision.DecidedAt.In(now.Location()).Date()
		if dy == y && dm == m && dd == d {
			n++
		}
	}
	return n
}

func (a *App) renderAdjusterDashboard() string {
	stats := dashboard.ForAdjuster(a.claimList, a.clock(), a.decidedToday())
	cards := statsRow(
		statsCard("Pending Review", len(stats.PendingReview), "Processing or HITL"),
		statsCard("Flagged", stats.Flagged, "Claims with flags"),
		statsCard("Avg Confidence", fmt.Sprintf("%d%%", stats.AverageConfidence), ""),
		statsCard("Reviewed Today", stats.ReviewedToday, ""),
	)
	spotlights := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("Low Confidence", spotlight(stats.LowConfidence, func(c claims.Claim) string {
			return confidenceIndicator(c.Confidence, false)
		}), false),
		"  ",
		panel("High Flag Count", spotlight(stats.HighFlagCount, func(c claims.Claim) string {
			return fmt.Sprintf("%d flags", c.FlagsCount)
		}), false),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Adjuster Dashboard"),
		subtitleStyle.Render("Review AI-processed claims and corrections"),
		"",
		cards,
		"",
		panel("Review Queue", a.claimTable.View(), true),
		spotlights,
	)
}

func spotlight(list []claims.Claim, detail func(claims.Claim) string) string {
	if len(list) == 0 {
		return mutedStyle.Render("Nothing to show")
	}
	lines := make([]string, 0, len(list))
	for _, c := range list {
		lines = append(lines, fmt.Sprintf("#%s %s  %s", c.ID, c.ClaimType.Label(), detail(c)))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderQueue(title, subtitle string) string {
	count := len(a.claimTable.Rows())
	body := a.claimTable.View()
	if count == 0 {
		body = mutedStyle.Render("The queue is empty.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		subtitleStyle.Render(fmt.Sprintf("%s · %d claims", subtitle, count)),
		"",
		panel("Queue", body, true),
	)
}
