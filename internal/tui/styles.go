package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/dashboard"
	"github.com/kingrea/claimdesk/internal/logbook"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	subtitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).MarginTop(1)
	errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("#5B8DEF"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3A3F4B")).
			Padding(0, 2).
			Width(22)
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))

	navItemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).PaddingLeft(2)
	navActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true).PaddingLeft(1)

	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Padding(0, 2)
	tabActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5B8DEF")).Bold(true).Padding(0, 2)

	toastStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#4CAF50")).Padding(0, 1)
	toastErrorStyle = toastStyle.BorderForeground(lipgloss.Color("#FF6B6B"))

	badgeBase = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

var statusColors = map[claims.Status]lipgloss.Color{
	claims.StatusProcessing: lipgloss.Color("#F7B801"),
	claims.StatusHITLReview: lipgloss.Color("#5B8DEF"),
	claims.StatusApproved:   lipgloss.Color("#4CAF50"),
	claims.StatusRejected:   lipgloss.Color("#FF6B6B"),
	claims.StatusPending:    lipgloss.Color("#999999"),
}

var bandColors = map[dashboard.Band]lipgloss.Color{
	dashboard.BandHigh:   lipgloss.Color("#4CAF50"),
	dashboard.BandMedium: lipgloss.Color("#F7B801"),
	dashboard.BandLow:    lipgloss.Color("#FF6B6B"),
}

var correctionColors = map[claims.CorrectionStatus]lipgloss.Color{
	claims.CorrectionPending:  lipgloss.Color("#F7B801"),
	claims.CorrectionApproved: lipgloss.Color("#4CAF50"),
	claims.CorrectionRejected: lipgloss.Color("#FF6B6B"),
	claims.CorrectionEdited:   lipgloss.Color("#5B8DEF"),
}

var messageColors = map[claims.MessageType]lipgloss.Color{
	claims.MessageInfo:    lipgloss.Color("#A0AEC0"),
	claims.MessageWarning: lipgloss.Color("#F7B801"),
	claims.MessageError:   lipgloss.Color("#FF6B6B"),
	claims.MessageSuccess: lipgloss.Color("#4CAF50"),
}

var logLevelColors = map[logbook.Level]lipgloss.Color{
	logbook.LevelInfo:    lipgloss.Color("#5B8DEF"),
	logbook.LevelWarning: lipgloss.Color("#F7B801"),
	logbook.LevelError:   lipgloss.Color("#FF6B6B"),
}

func statusBadge(status claims.Status) string {
	color, ok := statusColors[status]
	if !ok {
		color = lipgloss.Color("#999999")
	}
	return badgeBase.Foreground(color).Render(status.Label())
}

func correctionBadge(status claims.CorrectionStatus) string {
	return badgeBase.Foreground(correctionColors[status]).Render(strings.ToUpper(string(status)))
}

// confidenceIndicator renders a score as a coloured ten-cell bar.
func confidenceIndicator(score int, showLabel bool) string {
	band := dashboard.ConfidenceBand(score)
	filled := (score + 5) / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	style := lipgloss.NewStyle().Foreground(bandColors[band])
	bar := style.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", 10-filled))
	value := style.Bold(true).Render(fmt.Sprintf("%d%%", score))
	if !showLabel {
		return bar + " " + value
	}
	return fmt.Sprintf("%s %s %s", bar, value, mutedStyle.Render(string(band)))
}

func statsCard(title string, value any, note string) string {
	body := subtitleStyle.Render(title) + "\n" + cardValueStyle.Render(fmt.Sprint(value))
	if note != "" {
		body += "\n" + mutedStyle.Render(note)
	}
	return cardStyle.Render(body)
}

func statsRow(cards ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func panel(title, body string, focused bool) string {
	style := panelStyle
	if focused {
		style = focusedPanelStyle
	}
	return style.Render(titleStyle.Render(title) + "\n" + body)
}

// barChart renders labelled horizontal bars scaled to the largest value.
func barChart(labels []string, values []int, width int) string {
	if len(values) == 0 {
		return mutedStyle.Render("no data")
	}
	peak := 0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if width < 10 {
		width = 10
	}
	var b strings.Builder
	for i, v := range values {
		n := 0
		if peak > 0 {
			n = v * width / peak
		}
		fmt.Fprintf(&b, "%-10s %s %d\n", labels[i], strings.Repeat("▇", n), v)
	}
	return strings.TrimRight(b.String(), "\n")
}
