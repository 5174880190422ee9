package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/config"
	"github.com/kingrea/claimdesk/internal/logbook"
	"github.com/kingrea/claimdesk/internal/review"
	"github.com/kingrea/claimdesk/internal/session"
	"github.com/kingrea/claimdesk/internal/upload"
)

var testNow = time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, opts ...AppOption) (*App, *logbook.Logbook) {
	t.Helper()
	repo, err := claims.DefaultFixture()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	lb, err := logbook.New(filepath.Join(t.TempDir(), "logs", "system.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	cfg := &config.Config{ProjectDir: t.TempDir(), Project: config.DefaultProjectConfig()}
	base := []AppOption{
		WithLogbook(lb),
		WithClock(func() time.Time { return testNow }),
	}
	app := NewApp(cfg, repo, append(base, opts...)...)
	send(t, app, tea.WindowSizeMsg{Width: 140, Height: 50})
	return app, lb
}

// send delivers one message and drops the returned command. Upload timers
// are driven by sending their messages directly.
func send(t *testing.T, app *App, msg tea.Msg) {
	t.Helper()
	model, _ := app.Update(msg)
	if model != app {
		t.Fatalf("unexpected model: %T", model)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		nextModel, nextCmd := app.Update(msg)
		var ok bool
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		cmd = nextCmd
	}
	return app
}

func TestStartsOnLogin(t *testing.T) {
	app, _ := newTestApp(t)
	if app.state != stateLogin || app.path != session.PathLogin {
		t.Fatalf("state=%v path=%s", app.state, app.path)
	}
	if len(app.history) != 0 {
		t.Fatalf("history = %v", app.history)
	}
	if !strings.Contains(app.View(), "Sign in as") {
		t.Fatalf("login view missing role picker")
	}
}

func TestLoginRoutesToRoleDashboard(t *testing.T) {
	tests := []struct {
		role  session.Role
		path  string
		state appState
	}{
		{session.RoleCustomer, session.PathCustomer, stateCustomerDashboard},
		{session.RoleAdjuster, session.PathAdjuster, stateAdjusterDashboard},
		{session.RoleAdmin, session.PathAdmin, stateAdminDashboard},
	}
	for _, tt := range tests {
		app, lb := newTestApp(t)
		app = runCommands(t, app, app.login(tt.role))
		if app.path != tt.path || app.state != tt.state {
			t.Fatalf("%s: path=%s state=%v", tt.role, app.path, app.state)
		}
		entries, _ := lb.Tail(10)
		if len(entries) != 1 || entries[0].Source != "Auth" {
			t.Fatalf("%s: log entries = %+v", tt.role, entries)
		}
		if n := app.activeNotice(); n == nil || n.Title != "Welcome back" {
			t.Fatalf("%s: notice = %+v", tt.role, n)
		}
	}
}

func TestLoginWithEnterPicksFirstRole(t *testing.T) {
	app, _ := newTestApp(t)
	send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.path != session.PathCustomer {
		t.Fatalf("path = %s", app.path)
	}
	if got := len(app.claimTable.Rows()); got != 5 {
		t.Fatalf("recent claims rows = %d, want 5", got)
	}
}

func TestRouteGuardRedirectsToOwnDashboard(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.PathAdmin)
	if app.path != session.PathCustomer || app.state != stateCustomerDashboard {
		t.Fatalf("customer reached %s", app.path)
	}
}

func TestUnknownPathsShowNotFound(t *testing.T) {
	app, lb := newTestApp(t)
	app.login(session.RoleAdjuster)

	app.navigate("/nowhere")
	if app.state != stateNotFound || !strings.Contains(app.notFound, "/nowhere") {
		t.Fatalf("state=%v notFound=%q", app.state, app.notFound)
	}

	app.navigate(session.ClaimPath("9999"))
	if app.state != stateNotFound || app.notFound != "Claim 9999 not found" {
		t.Fatalf("state=%v notFound=%q", app.state, app.notFound)
	}
	entries, _ := lb.Tail(1)
	if len(entries) != 1 || entries[0].Level != logbook.LevelWarning {
		t.Fatalf("expected warning entry, got %+v", entries)
	}

	send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.path != session.PathAdjuster {
		t.Fatalf("enter on not found went to %s", app.path)
	}
}

func TestBackAndNavCycling(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleAdjuster)

	send(t, app, runes("]"))
	if app.path != session.PathAdjusterHITL {
		t.Fatalf("] went to %s", app.path)
	}
	if got := len(app.claimTable.Rows()); got != 2 {
		t.Fatalf("hitl rows = %d", got)
	}
	send(t, app, runes("]"))
	if app.path != session.PathAdjusterCAG {
		t.Fatalf("] went to %s", app.path)
	}
	if got := len(app.claimTable.Rows()); got != 2 {
		t.Fatalf("cag rows = %d", got)
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.path != session.PathAdjusterHITL {
		t.Fatalf("back went to %s", app.path)
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.path != session.PathAdjuster {
		t.Fatalf("back with empty history went to %s", app.path)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	app, lb := newTestApp(t)
	app.login(session.RoleAdmin)
	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlL})
	if app.state != stateLogin || app.session.Snapshot().Authenticated() {
		t.Fatalf("still logged in: state=%v", app.state)
	}
	if _, total := lb.Tail(1); total != 2 {
		t.Fatalf("log entries = %d, want login and logout", total)
	}
	app.navigate(session.PathAdmin)
	if app.path != session.PathLogin {
		t.Fatalf("logged out user reached %s", app.path)
	}
}

func TestUploadRequiresFields(t *testing.T) {
	app, lb := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.PathCustomerUpload)
	if app.state != stateUpload || app.upload == nil {
		t.Fatalf("state = %v", app.state)
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	if app.upload.tracker.Uploading() {
		t.Fatalf("upload started with empty form")
	}
	n := app.activeNotice()
	if n == nil || !n.isError || n.Title != "Missing information" {
		t.Fatalf("notice = %+v", n)
	}
	entries, _ := lb.Tail(1)
	if len(entries) != 1 || entries[0].Source != "Upload" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestUploadKeysFillForm(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.PathCustomerUpload)

	send(t, app, runes("claim.pdf"))
	send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	send(t, app, runes("POL-1"))
	send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	send(t, app, tea.KeyMsg{Type: tea.KeyRight})
	send(t, app, tea.KeyMsg{Type: tea.KeyRight})

	form := app.upload.form()
	if form.DocumentPath != "claim.pdf" || form.PolicyNumber != "POL-1" {
		t.Fatalf("form = %+v", form)
	}
	if form.ClaimType != string(claims.ClaimTypes[1]) {
		t.Fatalf("claim type = %q", form.ClaimType)
	}
	if got := form.Missing(); len(got) != 1 || got[0] != "Incident Date" {
		t.Fatalf("missing = %v", got)
	}

	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	if app.upload.tracker.Uploading() || app.upload.tracker.Phase() != upload.PhaseIdle {
		t.Fatalf("upload started without an incident date")
	}
	if n := app.activeNotice(); n == nil || !n.isError || !strings.Contains(n.Message, "Incident Date") {
		t.Fatalf("notice = %+v", n)
	}
}

func TestUploadSimulationAndRedirect(t *testing.T) {
	app, lb := newTestApp(t, WithUploadTiming(upload.Timing{Tick: time.Millisecond, Complete: time.Millisecond, Redirect: time.Millisecond}))
	app.login(session.RoleCustomer)
	app.navigate(session.PathCustomerUpload)

	doc := filepath.Join(t.TempDir(), "claim.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.7\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	v := app.upload
	v.document.SetValue(doc)
	v.policy.SetValue("POL-2024-001234")
	v.incident.SetValue("2024-01-10")
	v.claimType = 0

	if cmd := app.submitUpload(); cmd == nil {
		t.Fatalf("expected timer commands")
	}
	gen := v.tracker.Generation()
	if !v.tracker.Uploading() || v.tracker.Progress() != 0 {
		t.Fatalf("tracker not started")
	}
	// Form is locked while uploading.
	send(t, app, runes("x"))
	if v.document.Value() != doc {
		t.Fatalf("form changed during upload")
	}

	send(t, app, uploadTickMsg{gen: gen})
	send(t, app, uploadTickMsg{gen: gen - 1})
	if v.tracker.Progress() != upload.Step {
		t.Fatalf("progress = %d", v.tracker.Progress())
	}

	send(t, app, uploadCompleteMsg{gen: gen})
	if v.tracker.Phase() != upload.PhaseDone || v.tracker.Progress() != 100 || v.receipt == nil {
		t.Fatalf("upload not complete: phase=%v receipt=%v", v.tracker.Phase(), v.receipt)
	}
	if n := app.activeNotice(); n == nil || n.Title != "Claim uploaded successfully" {
		t.Fatalf("notice = %+v", n)
	}
	send(t, app, uploadTickMsg{gen: gen})
	if v.tracker.Progress() != 100 {
		t.Fatalf("tick after completion changed progress")
	}

	send(t, app, uploadRedirectMsg{gen: gen})
	if app.state != stateClaimReview || app.review.session.Claim().ID != config.DefaultLandingClaim {
		t.Fatalf("redirect landed on %s", app.path)
	}
	if _, total := lb.Tail(1); total != 2 {
		t.Fatalf("log entries = %d, want login and upload", total)
	}
}

func TestUploadTimersIgnoredAfterLeaving(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.PathCustomerUpload)
	gen, err := app.upload.tracker.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.path != session.PathCustomer {
		t.Fatalf("esc went to %s", app.path)
	}
	send(t, app, uploadCompleteMsg{gen: gen})
	send(t, app, uploadRedirectMsg{gen: gen})
	if app.path != session.PathCustomer {
		t.Fatalf("stale redirect moved to %s", app.path)
	}
}

func TestReviewCorrectionsAndFinalize(t *testing.T) {
	app, lb := newTestApp(t)
	app.login(session.RoleAdjuster)
	send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.state != stateClaimReview {
		t.Fatalf("enter on queue row: state=%v", app.state)
	}
	app.navigate(session.ClaimPath("0001"))
	v := app.review

	send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	send(t, app, runes("a"))
	if got := v.session.Corrections()[0].Status; got != claims.CorrectionApproved {
		t.Fatalf("c1 = %s", got)
	}
	send(t, app, runes("r"))
	if n := app.activeNotice(); n == nil || !n.isError {
		t.Fatalf("second action on closed correction should fail, notice = %+v", n)
	}

	send(t, app, tea.KeyMsg{Type: tea.KeyDown})
	send(t, app, runes("e"))
	if !v.editing || !app.capturesText() {
		t.Fatalf("editor not open")
	}
	v.input.SetValue("$4,100")
	send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	c2 := v.session.Corrections()[1]
	if v.editing || c2.Status != claims.CorrectionEdited || c2.SuggestedValue != "$4,100" {
		t.Fatalf("c2 = %+v editing=%v", c2, v.editing)
	}

	send(t, app, runes("A"))
	if d, ok := app.decisions["0001"]; len(app.decisions) != 1 || !ok || d.Disposition != review.DispositionApprove {
		t.Fatalf("decisions = %+v", app.decisions)
	}
	if app.state == stateClaimReview {
		t.Fatalf("finalize did not leave the review screen")
	}
	if n := app.activeNotice(); n == nil || n.Title != "Claim Approved" {
		t.Fatalf("notice = %+v", n)
	}
	if app.decidedToday() != 1 {
		t.Fatalf("decidedToday = %d", app.decidedToday())
	}
	entries, _ := lb.Tail(1)
	if len(entries) != 1 || entries[0].Source != "HITL Review" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestFinalizedClaimReopensReadOnly(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleAdjuster)
	app.navigate(session.ClaimPath("0001"))
	send(t, app, runes("A"))

	app.navigate(session.ClaimPath("0001"))
	if app.state != stateClaimReview || !app.review.session.Finalized() {
		t.Fatalf("reopened claim is not marked finalized")
	}
	if !strings.Contains(app.View(), "Claim Approved") {
		t.Fatalf("reopened claim does not show the earlier decision")
	}
	send(t, app, runes("R"))
	if n := app.activeNotice(); n == nil || !n.isError {
		t.Fatalf("second disposition accepted, notice = %+v", n)
	}
	if d := app.decisions["0001"]; len(app.decisions) != 1 || d.Disposition != review.DispositionApprove {
		t.Fatalf("decisions = %+v", app.decisions)
	}
	if got := app.decidedToday(); got != 1 {
		t.Fatalf("decidedToday = %d, want 1", got)
	}

	app.navigate(session.ClaimPath("0002"))
	if app.review.session.Finalized() {
		t.Fatalf("decision for 0001 leaked into 0002")
	}
}

func TestNoticeClearsItself(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.PathCustomerUpload)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	first := app.notice
	if first == nil || cmd == nil {
		t.Fatalf("notice without expiry: notice=%+v cmd=%v", first, cmd)
	}

	send(t, app, tea.KeyMsg{Type: tea.KeyCtrlS})
	second := app.notice
	send(t, app, noticeExpiredMsg{notice: first})
	if app.notice != second {
		t.Fatalf("expiry of an older notice cleared the current one")
	}
	send(t, app, noticeExpiredMsg{notice: second})
	if app.notice != nil {
		t.Fatalf("notice still shown after expiry")
	}
}

func TestReviewFieldEditing(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleAdjuster)
	app.navigate(session.ClaimPath("0001"))
	v := app.review

	send(t, app, tea.KeyMsg{Type: tea.KeyDown})
	send(t, app, runes("e"))
	if v.editing {
		t.Fatalf("locked field opened editor")
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyUp})
	send(t, app, runes("e"))
	v.input.SetValue("Jane Doe")
	send(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if v.editing || v.session.Fields()[0].Value == "Jane Doe" {
		t.Fatalf("esc should discard the edit")
	}
	if app.state != stateClaimReview {
		t.Fatalf("esc while editing left the screen")
	}
	send(t, app, runes("e"))
	v.input.SetValue("Jane Doe")
	send(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if got := v.session.Fields()[0].Value; got != "Jane Doe" {
		t.Fatalf("field = %q", got)
	}
}

func TestReviewIsReadOnlyForCustomer(t *testing.T) {
	app, _ := newTestApp(t)
	app.login(session.RoleCustomer)
	app.navigate(session.ClaimPath("0001"))
	if app.state != stateClaimReview {
		t.Fatalf("customer could not open claim")
	}
	send(t, app, runes("A"))
	if app.review.session.Finalized() || len(app.decisions) != 0 {
		t.Fatalf("customer finalized a claim")
	}
	send(t, app, runes("1"))
	if !app.review.collapsed[claims.Agents[0]] {
		t.Fatalf("agent section did not collapse")
	}
}

func TestAdminTabs(t *testing.T) {
	app, lb := newTestApp(t)
	app.login(session.RoleAdmin)
	lb.Error("Pipeline", "verifier timed out")

	app.navigate(session.PathAdminAnalytics)
	if app.state != stateAdminDashboard || app.adminTab != tabAnalytics {
		t.Fatalf("analytics tab = %v", app.adminTab)
	}
	if !strings.Contains(app.View(), "Confidence Distribution") {
		t.Fatalf("analytics view missing distribution")
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyRight})
	if app.adminTab != tabOverview {
		t.Fatalf("right wrapped to %v", app.adminTab)
	}
	send(t, app, tea.KeyMsg{Type: tea.KeyLeft})
	send(t, app, tea.KeyMsg{Type: tea.KeyLeft})
	if app.adminTab != tabLogs {
		t.Fatalf("left went to %v", app.adminTab)
	}
	if got := len(app.logTable.Rows()); got != 2 {
		t.Fatalf("log rows = %d", got)
	}
	if row := app.logTable.Rows()[0]; row[1] != string(logbook.LevelError) {
		t.Fatalf("newest row = %v", row)
	}
}

func TestEveryScreenRenders(t *testing.T) {
	paths := map[session.Role][]string{
		session.RoleCustomer: {session.PathCustomer, session.PathCustomerClaims, session.PathCustomerUpload},
		session.RoleAdjuster: {session.PathAdjuster, session.PathAdjusterHITL, session.PathAdjusterCAG, session.ClaimPath("0002")},
		session.RoleAdmin:    {session.PathAdmin, session.PathAdminUsers, session.PathAdminAnalytics, session.PathAdminSettings},
	}
	for role, list := range paths {
		app, _ := newTestApp(t)
		app.login(role)
		for _, path := range list {
			app.navigate(path)
			if app.path != path {
				t.Fatalf("%s: navigate %s landed on %s", role, path, app.path)
			}
			if view := app.View(); !strings.Contains(view, "CLAIMDESK") {
				t.Fatalf("%s %s: layout missing header", role, path)
			}
		}
	}
}
