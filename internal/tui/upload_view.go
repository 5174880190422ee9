package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/review"
	"github.com/kingrea/claimdesk/internal/session"
	"github.com/kingrea/claimdesk/internal/upload"
)

type uploadTickMsg struct{ gen int }

type uploadCompleteMsg struct{ gen int }

type uploadRedirectMsg struct{ gen int }

// Form focus positions.
const (
	focusDocument = iota
	focusPolicy
	focusIncidentDate
	focusClaimType
	focusDescription
	focusCount
)

type uploadView struct {
	document    textinput.Model
	policy      textinput.Model
	incident    textinput.Model
	description textinput.Model

	// claimType indexes claims.ClaimTypes; -1 means nothing chosen yet.
	claimType int
	focus     int

	bar     progress.Model
	tracker upload.Tracker
	receipt *upload.Receipt
}

func newUploadView(width int) *uploadView {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		return ti
	}
	v := &uploadView{
		document:    newInput("/path/to/claim.pdf", 512),
		policy:      newInput("POL-2024-000000", 32),
		incident:    newInput("YYYY-MM-DD", 10),
		description: newInput("Brief description of the incident", 500),
		claimType:   -1,
		bar:         progress.New(progress.WithDefaultGradient()),
	}
	v.resize(width)
	v.document.Focus()
	return v
}

func (v *uploadView) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (v *uploadView) resize(width int) {
	if width <= 0 {
		width = 80
	}
	v.bar.Width = max(20, min(60, width-10))
	for _, ti := range v.inputs() {
		if ti != nil {
			ti.Width = max(20, min(60, width-24))
		}
	}
}

// inputs returns the text inputs indexed by focus position; the claim type
// selector has no input and is nil.
func (v *uploadView) inputs() []*textinput.Model {
	return []*textinput.Model{&v.document, &v.policy, &v.incident, nil, &v.description}
}

func (v *uploadView) setFocus(pos int) tea.Cmd {
	v.focus = (pos + focusCount) % focusCount
	for i, ti := range v.inputs() {
		if ti == nil {
			continue
		}
		if i == v.focus {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
	return textinput.Blink
}

func (v *uploadView) cycleClaimType(step int) {
	n := len(claims.ClaimTypes)
	if v.claimType < 0 {
		if step > 0 {
			v.claimType = 0
		} else {
			v.claimType = n - 1
		}
		return
	}
	v.claimType = (v.claimType + step + n) % n
}

func (v *uploadView) form() upload.Form {
	f := upload.Form{
		DocumentPath: v.document.Value(),
		PolicyNumber: v.policy.Value(),
		IncidentDate: v.incident.Value(),
		Description:  v.description.Value(),
	}
	if v.claimType >= 0 && v.claimType < len(claims.ClaimTypes) {
		f.ClaimType = string(claims.ClaimTypes[v.claimType])
	}
	return f
}

func (a *App) updateUpload(msg tea.KeyMsg) tea.Cmd {
	v := a.upload
	if v == nil {
		return nil
	}
	key := msg.String()
	if key == "esc" {
		return a.navigate(session.PathCustomer)
	}
	// The form is locked while the upload runs.
	if v.tracker.Phase() != upload.PhaseIdle {
		return nil
	}
	switch key {
	case "ctrl+s":
		return a.submitUpload()
	case "tab", "down":
		return v.setFocus(v.focus + 1)
	case "shift+tab", "up":
		return v.setFocus(v.focus - 1)
	case "enter":
		if v.focus == focusCount-1 {
			return a.submitUpload()
		}
		return v.setFocus(v.focus + 1)
	}
	if v.focus == focusClaimType {
		switch key {
		case "left", "h":
			v.cycleClaimType(-1)
		case "right", "l", " ":
			v.cycleClaimType(1)
		}
		return nil
	}
	ti := v.inputs()[v.focus]
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return cmd
}

func (a *App) submitUpload() tea.Cmd {
	v := a.upload
	form := v.form()
	if err := form.Validate(); err != nil {
		var missing *upload.MissingFieldsError
		if errors.As(err, &missing) {
			a.setError("Missing information", "Please fill in all required fields: "+strings.Join(missing.Fields, ", "))
		} else {
			a.setError("Upload rejected", err.Error())
		}
		a.logWarn("Upload", "Upload rejected: %v", err)
		return nil
	}
	gen, err := v.tracker.Start()
	if err != nil {
		return nil
	}
	a.logger.Info("upload started", "policy", form.PolicyNumber, "type", form.ClaimType)
	timing := a.timing
	return tea.Batch(
		uploadTick(timing.Tick, gen),
		tea.Tick(timing.Complete, func(time.Time) tea.Msg { return uploadCompleteMsg{gen: gen} }),
	)
}

func uploadTick(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return uploadTickMsg{gen: gen} })
}

func (a *App) handleUploadTick(msg uploadTickMsg) tea.Cmd {
	if a.upload == nil || a.state != stateUpload {
		return nil
	}
	if !a.upload.tracker.Advance(msg.gen) || a.upload.tracker.Progress() >= 100 {
		return nil
	}
	return uploadTick(a.timing.Tick, msg.gen)
}

func (a *App) handleUploadComplete(msg uploadCompleteMsg) tea.Cmd {
	if a.upload == nil || a.state != stateUpload {
		return nil
	}
	if !a.upload.tracker.Complete(msg.gen) {
		return nil
	}
	receipt := upload.NewReceipt(a.upload.form(), a.clock())
	a.upload.receipt = &receipt
	a.logInfo("Upload", "Claim document %s uploaded for policy %s (ref %s)",
		receipt.Document, receipt.PolicyNumber, receipt.Reference)
	a.logger.Info("upload complete", "reference", receipt.Reference)
	a.setNotice(review.Notification{
		Title:   "Claim uploaded successfully",
		Message: "Your claim is now being processed by our AI system",
	})
	gen := msg.gen
	return tea.Tick(a.timing.Redirect, func(time.Time) tea.Msg { return uploadRedirectMsg{gen: gen} })
}

func (a *App) handleUploadRedirect(msg uploadRedirectMsg) tea.Cmd {
	if a.upload == nil || a.state != stateUpload || !a.upload.tracker.Current(msg.gen) {
		return nil
	}
	return a.navigate(session.ClaimPath(a.landingClaim))
}

func (a *App) renderUpload() string {
	v := a.upload
	if v == nil {
		return ""
	}
	label := func(pos int, text string) string {
		if v.focus == pos && v.tracker.Phase() == upload.PhaseIdle {
			return selectedStyle.Render("▸ " + text)
		}
		return subtitleStyle.Render("  " + text)
	}

	typeValue := mutedStyle.Render("‹ select ›")
	if v.claimType >= 0 {
		typeValue = "‹ " + claims.ClaimTypes[v.claimType].Label() + " ›"
	}

	rows := []string{
		label(focusDocument, "Claim Document (PDF) *"),
		"  " + v.document.View(),
		label(focusPolicy, "Policy Number *"),
		"  " + v.policy.View(),
		label(focusIncidentDate, "Incident Date *"),
		"  " + v.incident.View(),
		label(focusClaimType, "Claim Type *"),
		"  " + typeValue,
		label(focusDescription, "Description"),
		"  " + v.description.View(),
	}

	var status string
	switch v.tracker.Phase() {
	case upload.PhaseUploading:
		status = fmt.Sprintf("Uploading… %d%%\n%s", v.tracker.Progress(), v.bar.ViewAs(float64(v.tracker.Progress())/100))
	case upload.PhaseDone:
		status = v.bar.ViewAs(1) + "\n" + titleStyle.Render("Upload complete")
		if v.receipt != nil {
			status += "\n" + mutedStyle.Render("Reference "+v.receipt.Reference)
		}
		status += "\n" + mutedStyle.Render("Opening claim "+a.landingClaim+"…")
	default:
		status = mutedStyle.Render("Fields marked * are required.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Upload Claim"),
		subtitleStyle.Render("Submit a claim document for AI processing"),
		"",
		panel("Claim Details", strings.Join(rows, "\n"), true),
		panel("Status", status, false),
	)
}
