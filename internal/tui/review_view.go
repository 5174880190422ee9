package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/review"
)

type reviewPane int

const (
	paneFields reviewPane = iota
	paneCorrections
)

// reviewView is the claim review screen. All changes go through the
// review.Session; the view only tracks cursors and the open editor.
type reviewView struct {
	session    *review.Session
	pane       reviewPane
	fieldIdx   int
	corrIdx    int
	collapsed  map[claims.Agent]bool
	editing    bool
	editField  int
	editCorrID string
	input      textinput.Model
}

func newReviewView(s *review.Session) *reviewView {
	input := textinput.New()
	input.CharLimit = 200
	pane := paneFields
	if len(s.Fields()) == 0 && len(s.Corrections()) > 0 {
		pane = paneCorrections
	}
	return &reviewView{
		session:   s,
		pane:      pane,
		collapsed: map[claims.Agent]bool{},
		editField: -1,
		input:     input,
	}
}

func (v *reviewView) openEditor(value string) tea.Cmd {
	v.editing = true
	v.input.SetValue(value)
	v.input.CursorEnd()
	v.input.Focus()
	return textinput.Blink
}

func (v *reviewView) closeEditor() {
	v.editing = false
	v.editField = -1
	v.editCorrID = ""
	v.input.Blur()
	v.input.SetValue("")
}

func (v *reviewView) moveCursor(step int) {
	switch v.pane {
	case paneFields:
		v.fieldIdx = clamp(v.fieldIdx+step, len(v.session.Fields()))
	case paneCorrections:
		v.corrIdx = clamp(v.corrIdx+step, len(v.session.Corrections()))
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (v *reviewView) selectedCorrection() (claims.Correction, bool) {
	list := v.session.Corrections()
	if v.corrIdx < 0 || v.corrIdx >= len(list) {
		return claims.Correction{}, false
	}
	return list[v.corrIdx], true
}

func (a *App) updateReview(msg tea.KeyMsg) tea.Cmd {
	v := a.review
	if v == nil {
		return nil
	}
	if v.editing {
		return a.updateReviewEditor(msg)
	}
	key := msg.String()
	switch key {
	case "tab":
		if v.pane == paneFields {
			v.pane = paneCorrections
		} else {
			v.pane = paneFields
		}
	case "up", "k":
		v.moveCursor(-1)
	case "down", "j":
		v.moveCursor(1)
	case "1", "2", "3", "4":
		agent := claims.Agents[int(key[0]-'1')]
		v.collapsed[agent] = !v.collapsed[agent]
	case "e":
		return a.startReviewEdit()
	case "a":
		a.applyCorrection(review.ActionApprove)
	case "r":
		a.applyCorrection(review.ActionReject)
	case "A":
		return a.finalizeReview(review.DispositionApprove)
	case "R":
		return a.finalizeReview(review.DispositionReject)
	case "I":
		return a.finalizeReview(review.DispositionRequestMoreInfo)
	}
	return nil
}

func (a *App) updateReviewEditor(msg tea.KeyMsg) tea.Cmd {
	v := a.review
	switch msg.String() {
	case "esc":
		v.closeEditor()
		return nil
	case "enter":
		value := v.input.Value()
		if v.editCorrID != "" {
			corr, err := v.session.ReviseCorrection(v.editCorrID, value)
			if err != nil {
				a.setError("Unable to edit correction", err.Error())
			} else {
				a.setNotice(review.Notification{Title: "Correction edited", Message: fmt.Sprintf("%s set to %q", corr.Field, corr.SuggestedValue)})
				a.logInfo("CAG", "Correction %s on claim %s edited", corr.ID, v.session.Claim().ID)
			}
		} else if v.editField >= 0 {
			if err := v.session.EditField(v.editField, value); err != nil {
				a.setError("Unable to edit field", err.Error())
			} else {
				a.setNotice(review.Notification{Title: "Field updated", Message: v.session.Fields()[v.editField].Field + " changed"})
			}
		}
		v.closeEditor()
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (a *App) startReviewEdit() tea.Cmd {
	v := a.review
	if !v.session.CanReview() {
		a.setError("Read only", "Your role cannot edit claims")
		return nil
	}
	switch v.pane {
	case paneFields:
		if !v.session.CanEditField(v.fieldIdx) {
			a.setError("Read only", "This field cannot be edited")
			return nil
		}
		v.editField = v.fieldIdx
		return v.openEditor(v.session.Fields()[v.fieldIdx].Value)
	case paneCorrections:
		corr, ok := v.selectedCorrection()
		if !ok {
			return nil
		}
		updated, err := v.session.ApplyCorrection(corr.ID, review.ActionEdit)
		if err != nil {
			a.setError("Unable to edit correction", err.Error())
			return nil
		}
		v.editCorrID = updated.ID
		return v.openEditor(updated.SuggestedValue)
	}
	return nil
}

func (a *App) applyCorrection(action review.Action) {
	v := a.review
	if v.pane != paneCorrections {
		return
	}
	corr, ok := v.selectedCorrection()
	if !ok {
		return
	}
	updated, err := v.session.ApplyCorrection(corr.ID, action)
	if err != nil {
		a.setError("Unable to update correction", err.Error())
		return
	}
	a.setNotice(review.CorrectionNotice(action))
	a.logInfo("CAG", "Correction %s on claim %s %s", updated.ID, v.session.Claim().ID, updated.Status)
}

func (a *App) finalizeReview(d review.Disposition) tea.Cmd {
	v := a.review
	decision, err := v.session.Finalize(d)
	if err != nil {
		a.setError("Unable to finalize", err.Error())
		return nil
	}
	a.decisions[decision.ClaimID] = decision
	a.setNotice(decision.Notification)
	a.logInfo("HITL Review", "%s chose %s for claim %s (%d corrections pending)",
		decision.Reviewer.Name, decision.Disposition, decision.ClaimID, decision.PendingCorrections)
	a.logger.Info("claim finalized", "claim", decision.ClaimID, "disposition", decision.Disposition)
	return a.back()
}

func (a *App) renderReview() string {
	v := a.review
	if v == nil {
		return ""
	}
	claim := v.session.Claim()

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Claim #"+claim.ID), "  ",
		statusBadge(claim.Status), "  ",
		confidenceIndicator(claim.Confidence, true),
	)
	if v.session.Finalized() {
		decision, _ := v.session.Decision()
		header += "  " + selectedStyle.Render(decision.Notification.Title)
	}

	details := []string{
		fmt.Sprintf("Policy:    %s", claim.PolicyNumber),
		fmt.Sprintf("Type:      %s", claim.ClaimType.Label()),
		fmt.Sprintf("Incident:  %s", claim.IncidentDate),
		fmt.Sprintf("Flags:     %d", claim.FlagsCount),
	}
	if claim.ClaimAmount != nil {
		details = append(details, fmt.Sprintf("Amount:    $%.2f", *claim.ClaimAmount))
	}
	if claim.AssignedAdjuster != "" {
		details = append(details, "Adjuster:  "+claim.AssignedAdjuster)
	}
	if claim.Description != "" {
		details = append(details, "", claim.Description)
	}

	parts := []string{
		header,
		"",
		panel("Details", strings.Join(details, "\n"), false),
		panel("Agent Conversation", a.renderAgentMessages(claim), false),
		panel(fmt.Sprintf("CAG Corrections (%d pending)", v.session.PendingCorrections()), v.renderCorrections(), v.pane == paneCorrections),
		panel("Extracted Fields", v.renderFields(), v.pane == paneFields),
	}
	if v.editing {
		parts = append(parts, panel("Edit value", v.input.View(), true))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderAgentMessages(claim claims.Claim) string {
	grouped := claim.MessagesByAgent()
	if len(claim.AgentMessages) == 0 {
		return mutedStyle.Render("No agent activity recorded")
	}
	var b strings.Builder
	for i, agent := range claims.Agents {
		msgs := grouped[agent]
		marker := "▾"
		if a.review.collapsed[agent] {
			marker = "▸"
		}
		fmt.Fprintf(&b, "%s [%d] %s (%d)\n", marker, i+1, titleStyle.Render(agent.Label()), len(msgs))
		if a.review.collapsed[agent] {
			continue
		}
		for _, m := range msgs {
			style := lipgloss.NewStyle().Foreground(messageColors[m.Type])
			fmt.Fprintf(&b, "    %s %s\n", mutedStyle.Render(m.Timestamp.Format("15:04")), style.Render(m.Message))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *reviewView) renderCorrections() string {
	list := v.session.Corrections()
	if len(list) == 0 {
		return mutedStyle.Render("No corrections suggested")
	}
	lines := make([]string, 0, len(list)*2)
	for i, c := range list {
		cursor := "  "
		if v.pane == paneCorrections && i == v.corrIdx {
			cursor = selectedStyle.Render("▸ ")
		}
		lines = append(lines,
			fmt.Sprintf("%s%s %s  %s", cursor, titleStyle.Render(c.Field), correctionBadge(c.Status), mutedStyle.Render(c.Issue)),
			fmt.Sprintf("    %s → %s", mutedStyle.Render(c.OriginalValue), c.SuggestedValue),
		)
	}
	return strings.Join(lines, "\n")
}

func (v *reviewView) renderFields() string {
	fields := v.session.Fields()
	if len(fields) == 0 {
		return mutedStyle.Render("No extracted fields")
	}
	lines := make([]string, 0, len(fields))
	for i, f := range fields {
		cursor := "  "
		if v.pane == paneFields && i == v.fieldIdx {
			cursor = selectedStyle.Render("▸ ")
		}
		lock := ""
		if !f.Editable {
			lock = mutedStyle.Render(" (locked)")
		}
		lines = append(lines, fmt.Sprintf("%s%-18s %-28s %s%s", cursor, f.Field, f.Value, confidenceIndicator(f.Confidence, false), lock))
	}
	return strings.Join(lines, "\n")
}
