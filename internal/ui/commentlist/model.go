package commentlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/config"
	"github.com/fragmede/commentbox/internal/feed"
	"github.com/fragmede/commentbox/internal/pager"
	"github.com/fragmede/commentbox/internal/render"
	"github.com/fragmede/commentbox/internal/ui/messages"
	"github.com/fragmede/commentbox/internal/ui/pagerbar"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#4F9DDE")).Bold(true).Padding(0, 1)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	authorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F9DDE")).Bold(true)
	selStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	selBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F9DDE"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#8B0000")).Padding(0, 1)
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFD700")).Bold(true).Padding(0, 1)
	emptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(1, 2)
	sepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const (
	emptyText   = "No comments yet. Be the first to comment!"
	loadingText = "Loading comments..."
	failedText  = "Could not load comments. Press r to retry."
)

// Prefetcher warms pages the user is likely to open next.
type Prefetcher interface {
	Prefetch(ctx context.Context, pages []int, size int) (int, error)
}

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the paginated comment panel. It owns the feed controller and is
// the only place results are settled.
type Model struct {
	ctrl     *feed.Controller
	prefetch Prefetcher
	sizes    []int
	window   int
	ahead    int

	cursor     int
	confirming bool
	confirmID  uint64

	spinner  spinner.Model
	viewport viewport.Model
	offsets  []commentOffset
	width    int
	height   int
}

// New creates the panel. prefetch may be nil.
func New(ctrl *feed.Controller, prefetch Prefetcher, cfg config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctrl:     ctrl,
		prefetch: prefetch,
		sizes:    cfg.PageSizes,
		window:   cfg.WindowSize,
		ahead:    cfg.PrefetchPages,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	m.rebuildContent()
	return m
}

// Init starts the spinner and loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.Refresh())
}

// Refresh reloads the current page.
func (m Model) Refresh() tea.Cmd {
	return run(m.ctrl.Reload())
}

// State returns the controller's current state.
func (m Model) State() feed.State {
	return m.ctrl.State()
}

// Confirming reports whether a delete confirmation is waiting for y/n.
func (m Model) Confirming() bool {
	return m.confirming
}

// Cursor returns the index of the selected comment.
func (m Model) Cursor() int {
	return m.cursor
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.rebuildContent()
}

func run(req feed.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.FeedResultMsg{Result: req(context.Background())}
	}
}

func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return messages.StatusMsg{Text: text, IsError: isError}
	}
}

func composeResult(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.ComposeResultMsg{Err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.FeedResultMsg:
		return m.settle(msg.Result)

	case messages.SubmitCommentMsg:
		req, err := m.ctrl.Add(msg.Name, msg.Content)
		m.rebuildContent()
		if err != nil {
			return m, composeResult(err)
		}
		return m, run(req)

	case messages.PrefetchedMsg:
		if msg.Err != nil {
			log.Printf("prefetch (size %d): %v", msg.Size, msg.Err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirming {
			return m.handleConfirm(msg)
		}
		if model, cmd, ok := m.handleKey(msg); ok {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) settle(r feed.Result) (Model, tea.Cmd) {
	err := m.ctrl.Settle(r)
	if errors.Is(err, feed.ErrStale) {
		return m, nil
	}
	if err != nil {
		logError(err)
	}

	st := m.ctrl.State()
	var cmds []tea.Cmd
	switch r.(type) {
	case feed.LoadResult:
		if err == nil {
			if st.NeedsReload() {
				cmds = append(cmds, run(m.ctrl.Reload()))
			} else {
				cmds = append(cmds, m.prefetchNeighbours(st))
			}
		}
	case feed.AddResult:
		cmds = append(cmds, composeResult(err))
		if err == nil {
			m.cursor = 0
			cmds = append(cmds, status("Comment added", false))
		}
	case feed.RemoveResult:
		if err == nil {
			cmds = append(cmds, status("Comment deleted", false))
			if st.NeedsReload() {
				cmds = append(cmds, run(m.ctrl.Reload()))
			}
		} else {
			cmds = append(cmds, status("Delete failed", true))
		}
	}

	m.clampCursor()
	m.rebuildContent()
	return m, tea.Batch(cmds...)
}

func logError(err error) {
	var ne *api.NetworkError
	if errors.As(err, &ne) {
		log.Printf("request failed: %s", ne.Detail())
		return
	}
	log.Printf("request failed: %v", err)
}

func (m Model) prefetchNeighbours(st feed.State) tea.Cmd {
	if m.prefetch == nil || m.ahead <= 0 || st.PageSize == pager.Unbounded {
		return nil
	}
	var pages []int
	for p := st.Page + 1; p <= st.TotalPages() && len(pages) < m.ahead; p++ {
		pages = append(pages, p)
	}
	if st.HasPrev() {
		pages = append(pages, st.Page-1)
	}
	if len(pages) == 0 {
		return nil
	}

	pf := m.prefetch
	size := st.PageSize
	return func() tea.Msg {
		n, err := pf.Prefetch(context.Background(), pages, size)
		return messages.PrefetchedMsg{Size: size, Pages: n, Err: err}
	}
}

func (m Model) handleConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirming = false
		req, err := m.ctrl.Remove(m.confirmID)
		m.clampCursor()
		m.rebuildContent()
		if err != nil {
			return m, nil
		}
		return m, run(req)
	case "n", "N", "esc":
		m.confirming = false
		m.rebuildContent()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	st := m.ctrl.State()

	switch msg.String() {
	case "j", "down":
		if m.cursor < len(st.Items)-1 {
			m.cursor++
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil, true

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil, true

	case "h", "left":
		if !st.HasPrev() {
			return m, nil, true
		}
		return m.goToPage(st.Page - 1)

	case "l", "right":
		if !st.HasNext() {
			return m, nil, true
		}
		return m.goToPage(st.Page + 1)

	case "g", "home":
		if st.Page == 1 {
			return m, nil, true
		}
		return m.goToPage(1)

	case "G", "end":
		if st.Page == st.TotalPages() {
			return m, nil, true
		}
		return m.goToPage(st.TotalPages())

	case "s":
		req, err := m.ctrl.SetPageSize(pagerbar.NextSize(m.sizes, st.PageSize))
		m.cursor = 0
		m.rebuildContent()
		if err != nil {
			return m, nil, true
		}
		return m, run(req), true

	case "r":
		cmd := run(m.ctrl.Reload())
		m.rebuildContent()
		return m, cmd, true

	case "d", "x":
		if m.cursor < 0 || m.cursor >= len(st.Items) {
			return m, nil, true
		}
		m.confirming = true
		m.confirmID = st.Items[m.cursor].ID
		m.rebuildContent()
		return m, nil, true

	case "e":
		m.ctrl.DismissError()
		m.rebuildContent()
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) goToPage(page int) (Model, tea.Cmd, bool) {
	req, err := m.ctrl.SetPage(page)
	m.rebuildContent()
	if err != nil {
		return m, nil, true
	}
	m.cursor = 0
	m.viewport.GotoTop()
	return m, run(req), true
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.State().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the panel.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View(), m.renderFooter())
}

func (m Model) renderHeader() string {
	st := m.ctrl.State()

	title := titleStyle.Render("Comments") + badgeStyle.Render(fmt.Sprintf("%d", st.Total))
	if st.Status == feed.Loading {
		title += " " + m.spinner.View() + metaStyle.Render(" loading")
	}
	parts := []string{title}

	if st.Err != nil {
		parts = append(parts, errorStyle.Render("✗ "+st.Err.Error())+metaStyle.Render("  e:dismiss  r:retry"))
	}
	if m.confirming {
		name := ""
		if i := st.IndexOf(m.confirmID); i >= 0 {
			name = st.Items[i].Name
		}
		parts = append(parts, confirmStyle.Render(fmt.Sprintf("Delete comment by %s? (y/n)", name)))
	}

	parts = append(parts, sepStyle.Render(strings.Repeat("─", max(m.width, 1))))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderFooter() string {
	st := m.ctrl.State()
	nav := pagerbar.Pages(st.Page, st.TotalPages(), m.window)
	sizes := pagerbar.Sizes(m.sizes, st.PageSize)
	return lipgloss.JoinVertical(lipgloss.Left,
		sepStyle.Render(strings.Repeat("─", max(m.width, 1))),
		lipgloss.JoinHorizontal(lipgloss.Top, nav, "   ", sizes),
	)
}

func (m *Model) resizeViewport() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderFooter())
	m.viewport.Height = m.height - used
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
}

func (m *Model) rebuildContent() {
	m.resizeViewport()
	st := m.ctrl.State()

	if len(st.Items) == 0 {
		m.offsets = nil
		switch st.Status {
		case feed.Idle, feed.Loading:
			m.viewport.SetContent(emptyStyle.Render(loadingText))
		case feed.Failed:
			m.viewport.SetContent(emptyStyle.Render(failedText))
		default:
			m.viewport.SetContent(emptyStyle.Render(emptyText))
		}
		return
	}

	bodyWidth := m.width - 4
	if bodyWidth < 20 {
		bodyWidth = 20
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(st.Items))
	lineCount := 0
	for i, c := range st.Items {
		start := lineCount
		selected := i == m.cursor

		bar := barStyle.Render("│")
		if selected {
			bar = selBarStyle.Render("┃")
		}

		header := authorStyle.Render(render.Truncate(c.Name, bodyWidth/2))
		if ago := render.TimeAgo(c.CreatedAt); ago != "" {
			header += " " + metaStyle.Render(ago)
		}
		header += " " + metaStyle.Render(fmt.Sprintf("#%d", c.ID))

		headerLine := bar + " " + header
		if selected {
			headerLine = selStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		for _, line := range strings.Split(render.ToText(c.Content, bodyWidth), "\n") {
			bodyLine := bar + " " + line
			if selected {
				bodyLine = selStyle.Render(bodyLine)
			}
			sb.WriteString(bodyLine + "\n")
			lineCount++
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: start, endLine: lineCount - 1}
	}
	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.cursor < 0 || m.cursor >= len(m.offsets) {
		return
	}
	off := m.offsets[m.cursor]
	if off.startLine < m.viewport.YOffset {
		m.viewport.SetYOffset(off.startLine)
		return
	}
	if off.endLine >= m.viewport.YOffset+m.viewport.Height {
		top := off.endLine - m.viewport.Height + 1
		if top > off.startLine {
			top = off.startLine
		}
		m.viewport.SetYOffset(top)
	}
}
