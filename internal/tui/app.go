// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for claimdesk.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// Every screen is addressed by a path. Paths go through session.Resolve so
// the same guards apply whether a screen is opened from a menu, a table row
// or the back key.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/config"
	"github.com/kingrea/claimdesk/internal/logbook"
	"github.com/kingrea/claimdesk/internal/logging"
	"github.com/kingrea/claimdesk/internal/review"
	"github.com/kingrea/claimdesk/internal/session"
	"github.com/kingrea/claimdesk/internal/upload"
)

// appState represents which "screen" we're on
type appState int

const (
	stateLogin appState = iota
	stateCustomerDashboard
	stateCustomerClaims
	stateUpload
	stateAdjusterDashboard
	stateAdjusterHITL
	stateAdjusterCAG
	stateAdminDashboard
	stateAdminUsers
	stateAdminSettings
	stateClaimReview
	stateNotFound
)

var pathStates = map[string]appState{
	session.PathLogin:          stateLogin,
	session.PathCustomer:       stateCustomerDashboard,
	session.PathCustomerClaims: stateCustomerClaims,
	session.PathCustomerUpload: stateUpload,
	session.PathAdjuster:       stateAdjusterDashboard,
	session.PathAdjusterHITL:   stateAdjusterHITL,
	session.PathAdjusterCAG:    stateAdjusterCAG,
	session.PathAdmin:          stateAdminDashboard,
	session.PathAdminAnalytics: stateAdminDashboard,
	session.PathAdminUsers:     stateAdminUsers,
	session.PathAdminSettings:  stateAdminSettings,
}

const (
	noticeTTL     = 4 * time.Second
	logPanelLines = 6
	logoutKey     = "ctrl+l"
)

// navItem is one entry of the role sidebar.
type navItem struct {
	label string
	path  string
}

var roleNav = map[session.Role][]navItem{
	session.RoleCustomer: {
		{"Dashboard", session.PathCustomer},
		{"Upload Claim", session.PathCustomerUpload},
		{"My Claims", session.PathCustomerClaims},
	},
	session.RoleAdjuster: {
		{"Dashboard", session.PathAdjuster},
		{"HITL Review", session.PathAdjusterHITL},
		{"CAG Corrections", session.PathAdjusterCAG},
	},
	session.RoleAdmin: {
		{"Dashboard", session.PathAdmin},
		{"User Management", session.PathAdminUsers},
		{"Analytics", session.PathAdminAnalytics},
		{"System Settings", session.PathAdminSettings},
	},
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithSession injects the authentication session.
func WithSession(s *session.Session) AppOption {
	return func(a *App) {
		if s != nil {
			a.session = s
		}
	}
}

// WithLogbook sets the system log shown on the admin screens.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithUploadTiming overrides the simulated upload timers.
func WithUploadTiming(t upload.Timing) AppOption {
	return func(a *App) {
		a.timing = t.Normalize()
	}
}

type notice struct {
	review.Notification
	isError bool
	at      time.Time
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state        appState
	config       *config.Config
	repo         claims.Repository
	session      *session.Session
	logbook      *logbook.Logbook
	logger       *logging.Logger
	clock        func() time.Time
	timing       upload.Timing
	landingClaim string

	// Navigation
	path     string
	history  []string
	notFound string

	// Data
	claimList []claims.Claim
	decisions map[string]review.Decision
	loadErr   error

	// UI components
	loginMenu  list.Model
	claimTable table.Model
	userTable  table.Model
	logTable   table.Model
	upload     *uploadView
	review     *reviewView
	adminTab   adminTab
	notice     *notice

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance on the login screen.
func NewApp(cfg *config.Config, repo claims.Repository, opts ...AppOption) *App {
	if cfg == nil {
		cfg = &config.Config{Project: config.DefaultProjectConfig()}
	}
	app := &App{
		config:  cfg,
		repo:    repo,
		session: session.New(),
		logger:  logging.Discard(),
		clock:   time.Now,
		timing: upload.Timing{
			Tick:     cfg.Project.Upload.Tick,
			Complete: cfg.Project.Upload.Complete,
			Redirect: cfg.Project.Upload.Redirect,
		}.Normalize(),
		landingClaim: cfg.LandingClaim(),
		decisions:    map[string]review.Decision{},
		loginMenu:    newLoginMenu(),
		claimTable:   newTable(claimColumns(false)),
		userTable:    newTable(userColumns()),
		logTable:     newTable(logColumns()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.landingClaim == "" {
		app.landingClaim = config.DefaultLandingClaim
	}
	app.navigate(session.PathRoot)
	app.history = nil
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("claimdesk")
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	shown := a.notice
	model, cmd := a.handle(msg)
	if a.notice != nil && a.notice != shown {
		cmd = tea.Batch(cmd, expireNotice(a.notice))
	}
	return model, cmd
}

func (a *App) handle(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case noticeExpiredMsg:
		if a.notice == msg.notice {
			a.notice = nil
		}
		return a, nil

	case uploadTickMsg:
		return a, a.handleUploadTick(msg)
	case uploadCompleteMsg:
		return a, a.handleUploadComplete(msg)
	case uploadRedirectMsg:
		return a, a.handleUploadRedirect(msg)

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.capturesText() {
			switch key {
			case "q":
				if a.state == stateLogin {
					return a, tea.Quit
				}
			case logoutKey:
				if a.session.Snapshot().Authenticated() {
					return a, a.logout()
				}
			case "esc":
				if a.state != stateLogin {
					return a, a.back()
				}
			case "]":
				return a, a.cycleNav(1)
			case "[":
				return a, a.cycleNav(-1)
			}
		}
		return a, a.updateScreen(msg)
	}

	return a, nil
}

func (a *App) updateScreen(msg tea.KeyMsg) tea.Cmd {
	switch a.state {
	case stateLogin:
		return a.updateLogin(msg)
	case stateUpload:
		return a.updateUpload(msg)
	case stateClaimReview:
		return a.updateReview(msg)
	case stateAdminDashboard:
		return a.updateAdmin(msg)
	case stateAdminUsers:
		var cmd tea.Cmd
		a.userTable, cmd = a.userTable.Update(msg)
		return cmd
	case stateNotFound:
		if msg.String() == "enter" {
			return a.navigate(session.PathRoot)
		}
		return nil
	case stateAdminSettings:
		return nil
	}
	return a.updateClaimTable(msg)
}

// capturesText reports whether keys should go to a text input untouched.
func (a *App) capturesText() bool {
	switch a.state {
	case stateUpload:
		return true
	case stateClaimReview:
		return a.review != nil && a.review.editing
	}
	return false
}

// navigate resolves path through the route guards and opens the result,
// remembering the current screen for back.
func (a *App) navigate(path string) tea.Cmd {
	res := session.Resolve(path, a.session.Snapshot())
	if a.path != "" && a.path != res.Path && a.path != session.PathLogin && a.path != session.PathNotFound {
		a.history = append(a.history, a.path)
	}
	return a.enter(res)
}

// back returns to the previous screen, or the dashboard when there is none.
func (a *App) back() tea.Cmd {
	for len(a.history) > 0 {
		prev := a.history[len(a.history)-1]
		a.history = a.history[:len(a.history)-1]
		if prev == a.path {
			continue
		}
		return a.enter(session.Resolve(prev, a.session.Snapshot()))
	}
	return a.enter(session.Resolve(session.PathRoot, a.session.Snapshot()))
}

func (a *App) enter(res session.Resolution) tea.Cmd {
	if a.state == stateUpload && a.upload != nil {
		a.upload.tracker.Reset()
	}
	if res.Redirected {
		a.logger.Debug("route redirected", "from", res.Requested, "to", res.Path)
	}
	a.path = res.Path
	a.loadErr = nil

	if res.ClaimID != "" {
		return a.openClaim(res.ClaimID)
	}
	state, ok := pathStates[res.Path]
	if res.NotFound || !ok {
		a.state = stateNotFound
		a.notFound = fmt.Sprintf("Page %s not found", res.Requested)
		return nil
	}
	a.state = state
	a.review = nil

	switch state {
	case stateLogin:
		return nil
	case stateUpload:
		a.upload = newUploadView(a.width)
		return a.upload.focusCmd()
	case stateAdminDashboard:
		a.adminTab = tabOverview
		if res.Path == session.PathAdminAnalytics {
			a.adminTab = tabAnalytics
		}
	}
	a.refreshClaims()
	a.rebuildTables()
	return nil
}

func (a *App) openClaim(id string) tea.Cmd {
	claim, err := a.repo.GetByID(context.Background(), id)
	if err != nil {
		a.state = stateNotFound
		a.review = nil
		if errors.Is(err, claims.ErrClaimNotFound) {
			a.notFound = fmt.Sprintf("Claim %s not found", id)
			a.logWarn("Claims", "Claim %s requested but not found", id)
		} else {
			a.notFound = fmt.Sprintf("Claim %s could not be loaded", id)
			a.logger.Error("load claim", "id", id, "err", err)
		}
		return nil
	}
	a.state = stateClaimReview
	opts := []review.Option{review.WithClock(a.clock)}
	if decision, ok := a.decisions[id]; ok {
		opts = append(opts, review.WithDecision(decision))
	}
	a.review = newReviewView(review.NewSession(claim, a.session.Snapshot(), opts...))
	a.logger.Debug("claim opened", "id", id, "role", a.session.Snapshot().User.Role)
	return nil
}

func (a *App) refreshClaims() {
	list, err := a.repo.List(context.Background())
	if err != nil {
		a.loadErr = err
		a.claimList = nil
		a.logger.Error("list claims", "err", err)
		return
	}
	a.claimList = list
}

func (a *App) cycleNav(step int) tea.Cmd {
	items := roleNav[a.session.Snapshot().User.Role]
	if len(items) == 0 {
		return nil
	}
	idx := 0
	for i, item := range items {
		if item.path == a.path {
			idx = i
			break
		}
	}
	idx = (idx + step + len(items)) % len(items)
	return a.navigate(items[idx].path)
}

func (a *App) logout() tea.Cmd {
	user := a.session.Snapshot().User
	a.session.Logout()
	a.history = nil
	a.decisions = map[string]review.Decision{}
	a.logInfo("Auth", "%s logged out", user.Name)
	a.logger.Info("logout", "user", user.Email)
	return a.enter(session.Resolve(session.PathLogin, a.session.Snapshot()))
}

func (a *App) setNotice(n review.Notification) {
	a.notice = &notice{Notification: n, at: a.clock()}
}

func (a *App) setError(title, message string) {
	a.notice = &notice{Notification: review.Notification{Title: title, Message: message}, isError: true, at: a.clock()}
}

// noticeExpiredMsg clears notice if it is still the one on screen.
type noticeExpiredMsg struct{ notice *notice }

func expireNotice(n *notice) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{notice: n} })
}

func (a *App) activeNotice() *notice {
	if a.notice == nil || a.clock().Sub(a.notice.at) > noticeTTL {
		return nil
	}
	return a.notice
}

func (a *App) logInfo(source, format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(source, format, args...)
}

func (a *App) logWarn(source, format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(source, format, args...)
}

func (a *App) resize() {
	contentWidth := a.contentWidth()
	a.loginMenu.SetSize(max(20, contentWidth), max(8, a.height-10))
	rows := max(5, a.height-16)
	for _, t := range []*table.Model{&a.claimTable, &a.userTable, &a.logTable} {
		t.SetWidth(max(40, contentWidth))
		t.SetHeight(rows)
	}
	if a.upload != nil {
		a.upload.resize(contentWidth)
	}
}

func (a *App) contentWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return width - sidebarWidth - 4
}

const sidebarWidth = 22

// View renders the current state to a string.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateLogin:
		return a.renderLogin()
	case stateCustomerDashboard:
		content = a.renderCustomerDashboard()
	case stateCustomerClaims:
		content = a.renderCustomerClaims()
	case stateUpload:
		content = a.renderUpload()
	case stateAdjusterDashboard:
		content = a.renderAdjusterDashboard()
	case stateAdjusterHITL:
		content = a.renderQueue("HITL Review", "Claims escalated for human review")
	case stateAdjusterCAG:
		content = a.renderQueue("CAG Corrections", "Claims with corrections awaiting a decision")
	case stateAdminDashboard:
		content = a.renderAdminDashboard()
	case stateAdminUsers:
		content = a.renderAdminUsers()
	case stateAdminSettings:
		content = a.renderAdminSettings()
	case stateClaimReview:
		content = a.renderReview()
	case stateNotFound:
		content = errorTextStyle.Render("404") + "\n" + a.notFound + "\n" + helpStyle.Render("enter: dashboard · esc: back")
	}
	if a.loadErr != nil {
		content = errorTextStyle.Render("Unable to load claims: "+a.loadErr.Error()) + "\n\n" + content
	}
	return a.renderLayout(content)
}

func (a *App) renderLayout(content string) string {
	snap := a.session.Snapshot()
	header := headerStyle.Render("⬡ CLAIMDESK") + "  " +
		subtitleStyle.Render(fmt.Sprintf("%s · %s", snap.User.Name, snap.User.Role.Label()))
	body := lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(), "  ", content)
	parts := []string{header, body}
	if n := a.activeNotice(); n != nil {
		style := toastStyle
		if n.isError {
			style = toastErrorStyle
		}
		parts = append(parts, style.Render(titleStyle.Render(n.Title)+"\n"+n.Message))
	}
	parts = append(parts, helpStyle.Render(a.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderSidebar() string {
	items := roleNav[a.session.Snapshot().User.Role]
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.path == a.path {
			lines = append(lines, navActiveStyle.Render("▸ "+item.label))
			continue
		}
		lines = append(lines, navItemStyle.Render(item.label))
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

func (a *App) helpLine() string {
	common := "[/]: switch page · esc: back · " + logoutKey + ": logout · ctrl+c: quit"
	switch a.state {
	case stateUpload:
		return "tab: next field · ←/→: claim type · ctrl+s: submit · esc: cancel"
	case stateClaimReview:
		if a.review != nil && a.review.editing {
			return "enter: save · esc: cancel edit"
		}
		if a.review != nil && a.review.session.CanReview() {
			return "tab: fields/corrections · e: edit · a/r: approve/reject correction · A/R/I: approve/reject/request info · 1-4: toggle agent · " + common
		}
		return "1-4: toggle agent · " + common
	case stateAdminDashboard:
		return "←/→: tabs · enter: open claim · " + common
	case stateAdminUsers, stateAdminSettings, stateNotFound:
		return common
	}
	return "↑/↓: select · enter: open claim · " + common
}
