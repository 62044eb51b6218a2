package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/settings"
)

// SettingsEditorModel is the bubbletea model for toggling vault settings
type SettingsEditorModel struct {
	toggles   []settings.Toggle
	draft     *settings.Settings
	original  *settings.Settings
	cursor    int
	width     int
	height    int
	quitting  bool
	confirmed bool
}

// Settings editor styles
var (
	editorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1)

	editorOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	editorSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Bold(true).
				Padding(0, 1)

	editorChangedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	editorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	editorHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	descBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Foreground(lipgloss.Color("250"))

	descTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Bold(true)
)

// NewSettingsEditorModel creates an editor over a copy of current
func NewSettingsEditorModel(current *settings.Settings) SettingsEditorModel {
	return SettingsEditorModel{
		toggles:  settings.Toggles,
		draft:    current.Clone(),
		original: current.Clone(),
	}
}

func (m SettingsEditorModel) Init() tea.Cmd {
	return nil
}

func (m SettingsEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.toggles)-1 {
				m.cursor++
			}

		case " ", "tab":
			t := m.toggles[m.cursor]
			t.Set(m.draft, !t.Get(m.draft))

		case "enter":
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m SettingsEditorModel) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	var left strings.Builder

	left.WriteString(editorTitleStyle.Render(i18n.T("editor.title", nil)))
	left.WriteString("\n\n")

	for i, t := range m.toggles {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		box := "[ ]"
		if t.Get(m.draft) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, t.Key)

		switch {
		case i == m.cursor:
			line = editorSelectedStyle.Render(line)
		case t.Get(m.draft) != t.Get(m.original):
			line = editorChangedStyle.Render(line + " *")
		default:
			line = editorOptionStyle.Render(line)
		}

		left.WriteString(line)
		left.WriteString("\n")
	}

	help := editorHelpStyle.Render("↑/↓: " + i18n.T("editor.help.move", nil) +
		" | Space: " + i18n.T("editor.help.toggle", nil) +
		" | Enter: " + i18n.T("editor.help.save", nil) +
		" | Esc: " + i18n.T("editor.help.cancel", nil))
	left.WriteString(help)

	current := m.toggles[m.cursor]
	var right strings.Builder
	right.WriteString(descTitleStyle.Render(current.Key))
	right.WriteString("\n\n")
	right.WriteString(i18n.T("editor.desc."+current.Key, nil))

	leftBox := editorBoxStyle.Render(left.String())
	rightBox := descBoxStyle.Width(40).Height(len(m.toggles) + 4).Render(right.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, "  ", rightBox)
}

// Changed reports whether the draft differs from the settings it started from
func (m SettingsEditorModel) Changed() bool {
	for _, t := range m.toggles {
		if t.Get(m.draft) != t.Get(m.original) {
			return true
		}
	}
	return false
}

// Apply copies the edited toggles onto s
func (m SettingsEditorModel) Apply(s *settings.Settings) {
	for _, t := range m.toggles {
		t.Set(s, t.Get(m.draft))
	}
}

// IsConfirmed returns whether the user saved the edits
func (m SettingsEditorModel) IsConfirmed() bool {
	return m.confirmed
}

// RunSettingsEditor launches the interactive toggle editor.
// The returned model carries the edits; nothing is saved here.
func RunSettingsEditor(current *settings.Settings) (SettingsEditorModel, error) {
	p := tea.NewProgram(NewSettingsEditorModel(current))

	finalModel, err := p.Run()
	if err != nil {
		return SettingsEditorModel{}, err
	}

	return finalModel.(SettingsEditorModel), nil
}
