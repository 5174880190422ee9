package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/claimdesk/internal/review"
	"github.com/kingrea/claimdesk/internal/session"
)

// roleItem implements list.Item for the role picker.
type roleItem struct {
	role session.Role
}

func (i roleItem) Title() string       { return i.role.Label() }
func (i roleItem) Description() string { return i.role.Description() }
func (i roleItem) FilterValue() string { return i.role.String() }

func newLoginMenu() list.Model {
	items := make([]list.Item, 0, len(session.Roles))
	for _, role := range session.Roles {
		items = append(items, roleItem{role: role})
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Sign in as"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)
	return menu
}

func (a *App) updateLogin(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		item, ok := a.loginMenu.SelectedItem().(roleItem)
		if !ok {
			return nil
		}
		return a.login(item.role)
	}
	var cmd tea.Cmd
	a.loginMenu, cmd = a.loginMenu.Update(msg)
	return cmd
}

// login authenticates as role and opens that role's dashboard.
func (a *App) login(role session.Role) tea.Cmd {
	snap, err := a.session.Login(role)
	if err != nil {
		a.setError("Login failed", err.Error())
		return nil
	}
	a.history = nil
	a.logInfo("Auth", "%s logged in as %s", snap.User.Name, snap.User.Role.Label())
	a.logger.Info("login", "user", snap.User.Email, "role", snap.User.Role)
	a.setNotice(review.Notification{Title: "Welcome back", Message: "Logged in as " + snap.User.Name})
	return a.navigate(session.PathRoot)
}

func (a *App) renderLogin() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	a.loginMenu.SetSize(max(30, width/2), max(8, len(session.Roles)*3+2))
	title := headerStyle.Render("⬡ CLAIMDESK")
	subtitle := subtitleStyle.Render("AI-powered claims processing with human oversight")
	parts := []string{title, subtitle, "", a.loginMenu.View()}
	if n := a.activeNotice(); n != nil && n.isError {
		parts = append(parts, toastErrorStyle.Render(n.Title+"\n"+n.Message))
	}
	parts = append(parts, helpStyle.Render("↑/↓: choose role · enter: sign in · q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
