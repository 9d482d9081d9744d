package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/commentbox/internal/api"
	"github.com/fragmede/commentbox/internal/ui/messages"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4F9DDE")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282"))
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

const (
	focusName = iota
	focusContent
)

// Model is the add-comment form.
type Model struct {
	nameInput  textinput.Model
	content    textarea.Model
	focusIndex int
	err        string
	submitting bool
	width      int
	height     int
}

// New creates an empty form with the name field focused.
func New() Model {
	ni := textinput.New()
	ni.Placeholder = "Your name"
	ni.CharLimit = api.MaxNameLength
	ni.Width = 40
	ni.Focus()

	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.CharLimit = api.MaxContentLength
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(6)

	return Model{nameInput: ni, content: ta}
}

// SetSize sets the available dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	tw := w - 4
	if tw > 100 {
		tw = 100
	}
	if tw < 20 {
		tw = 20
	}
	m.content.SetWidth(tw)
	m.nameInput.Width = tw
	th := h - 12
	if th < 3 {
		th = 3
	}
	if th > 12 {
		th = 12
	}
	m.content.SetHeight(th)
}

// Submitting reports whether a submission is in flight.
func (m Model) Submitting() bool {
	return m.submitting
}

// Err returns the error shown under the form.
func (m Model) Err() string {
	return m.err
}

// Values returns the current field contents.
func (m Model) Values() (name, content string) {
	return m.nameInput.Value(), m.content.Value()
}

func (m *Model) toggleFocus() {
	if m.focusIndex == focusName {
		m.focusIndex = focusContent
		m.nameInput.Blur()
		m.content.Focus()
	} else {
		m.focusIndex = focusName
		m.content.Blur()
		m.nameInput.Focus()
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			m.toggleFocus()
			return m, nil
		case "enter":
			if m.focusIndex == focusName {
				m.toggleFocus()
				return m, nil
			}
		case "ctrl+s":
			if m.submitting {
				return m, nil
			}
			nc := api.NewComment{Name: m.nameInput.Value(), Content: m.content.Value()}.Normalize()
			if err := nc.Validate(); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.submitting = true
			m.err = ""
			return m, func() tea.Msg {
				return messages.SubmitCommentMsg{Name: nc.Name, Content: nc.Content}
			}
		}

	case messages.ComposeResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		// Keep the name for the next comment.
		m.err = ""
		m.content.Reset()
		return m, func() tea.Msg { return messages.GoBackMsg{} }
	}

	var cmd tea.Cmd
	if m.focusIndex == focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.content, cmd = m.content.Update(msg)
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add a comment"))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Name"))
	sb.WriteString(" " + counter(m.nameInput.Value(), api.MaxNameLength))
	sb.WriteString("\n")
	sb.WriteString(m.nameInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Comment"))
	sb.WriteString(" " + counter(m.content.Value(), api.MaxContentLength))
	sb.WriteString("\n")
	sb.WriteString(m.content.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString("Submitting...")
	} else {
		sb.WriteString(hintStyle.Render("Tab to switch fields | Ctrl+S to submit | Esc to cancel"))
	}

	content := sb.String()
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func counter(s string, limit int) string {
	return counterStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(s), limit))
}
