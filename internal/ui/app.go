package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/commentbox/internal/config"
	"github.com/fragmede/commentbox/internal/feed"
	"github.com/fragmede/commentbox/internal/ui/commentlist"
	"github.com/fragmede/commentbox/internal/ui/compose"
	"github.com/fragmede/commentbox/internal/ui/messages"
	"github.com/fragmede/commentbox/internal/ui/statusbar"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewList ViewType = iota
	ViewCompose
)

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType

	// Child models
	list      commentlist.Model
	compose   compose.Model
	statusBar statusbar.Model
	help      help.Model

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model. prefetch may be nil.
func NewApp(cfg config.Config, store feed.Store, prefetch commentlist.Prefetcher) *App {
	ctrl := feed.New(store, cfg.DefaultPageSize)

	h := help.New()
	h.Styles.ShortKey = AccentStyle
	h.Styles.FullKey = AccentStyle
	h.Styles.ShortDesc = DimStyle
	h.Styles.FullDesc = DimStyle
	h.Styles.ShortSeparator = DimStyle
	h.Styles.FullSeparator = DimStyle

	return &App{
		activeView: ViewList,
		list:       commentlist.New(ctrl, prefetch, cfg),
		compose:    compose.New(),
		statusBar:  statusbar.New(cfg.APIBaseURL),
		help:       h,
	}
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	return a.list.Init()
}

// ActiveView returns the view currently on screen.
func (a *App) ActiveView() ViewType {
	return a.activeView
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case tea.KeyMsg:
		if a.activeView == ViewCompose {
			// Esc in the text input view goes back.
			switch msg.String() {
			case "esc":
				return a, a.goBack()
			case "ctrl+c":
				return a, tea.Quit
			}
			break
		}
		if a.list.Confirming() {
			break
		}
		switch {
		case msg.String() == "ctrl+c", key.Matches(msg, Keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, Keys.Compose):
			return a, func() tea.Msg { return messages.OpenComposeMsg{} }
		case key.Matches(msg, Keys.Help):
			a.help.ShowAll = !a.help.ShowAll
			a.layout()
			return a, nil
		}

	// View transitions.
	case messages.OpenComposeMsg:
		a.pushView(ViewCompose)
		a.layout()
		return a, nil

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	// Results always reach their owner, whichever view is on screen.
	case messages.FeedResultMsg, messages.SubmitCommentMsg, messages.PrefetchedMsg, spinner.TickMsg:
		a.list, cmd = a.list.Update(msg)
		return a, cmd

	case messages.ComposeResultMsg:
		a.compose, cmd = a.compose.Update(msg)
		return a, cmd
	}

	// Route to active view.
	switch a.activeView {
	case ViewList:
		a.list, cmd = a.list.Update(msg)
	case ViewCompose:
		a.compose, cmd = a.compose.Update(msg)
	}
	return a, cmd
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewList:
		content = lipgloss.JoinVertical(lipgloss.Left, a.list.View(), HelpStyle.Render(a.help.View(Keys)))
	case ViewCompose:
		content = a.compose.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// layout hands out the screen: one line for the status bar, the help block
// under the list, and the rest to the active view.
func (a *App) layout() {
	a.help.Width = a.width - HelpStyle.GetHorizontalPadding()
	a.statusBar.SetSize(a.width)

	contentHeight := a.height - 1
	a.compose.SetSize(a.width, contentHeight)

	listHeight := contentHeight - lipgloss.Height(HelpStyle.Render(a.help.View(Keys)))
	if listHeight < 1 {
		listHeight = 1
	}
	a.list.SetSize(a.width, listHeight)
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	}
	return nil
}
