package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/remote"
)

// AddPromptModel asks for a repository and an optional version to freeze
type AddPromptModel struct {
	inputs    []textinput.Model
	focus     int
	withVer   bool // version input shown
	err       string
	repo      string
	version   string
	quitting  bool
	confirmed bool
}

var (
	promptErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Bold(true)
)

// NewAddPromptModel creates the prompt; withVersion adds the frozen version field
func NewAddPromptModel(withVersion bool) AddPromptModel {
	repo := textinput.New()
	repo.Placeholder = "owner/repository"
	repo.CharLimit = 200
	repo.Width = 48
	repo.Focus()

	inputs := []textinput.Model{repo}
	if withVersion {
		ver := textinput.New()
		ver.Placeholder = i18n.T("prompt.versionPlaceholder", nil)
		ver.CharLimit = 50
		ver.Width = 20
		inputs = append(inputs, ver)
	}

	return AddPromptModel{
		inputs:  inputs,
		withVer: withVersion,
	}
}

func (m AddPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m AddPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			return m.focusInput((m.focus + 1) % len(m.inputs))

		case "down":
			return m.focusInput(min(m.focus+1, len(m.inputs)-1))

		case "shift+tab", "up":
			return m.focusInput(max(m.focus-1, 0))

		case "enter":
			repo, err := remote.ParseRepo(m.inputs[0].Value())
			if err != nil {
				m.err = i18n.T("prompt.invalidRepo", nil)
				return m, nil
			}
			m.repo = repo
			if m.withVer {
				m.version = strings.TrimSpace(m.inputs[1].Value())
			}
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.err = ""
	return m, cmd
}

func (m AddPromptModel) focusInput(i int) (tea.Model, tea.Cmd) {
	if i == m.focus {
		return m, nil
	}
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

func (m AddPromptModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(editorTitleStyle.Render(i18n.T("prompt.title", nil)))
	b.WriteString("\n\n")

	b.WriteString(promptLabelStyle.Render(i18n.T("prompt.repo", nil)))
	b.WriteString("\n")
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n\n")

	if m.withVer {
		b.WriteString(promptLabelStyle.Render(i18n.T("prompt.version", nil)))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n\n")
	}

	if m.err != "" {
		b.WriteString(promptErrStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(editorHelpStyle.Render("Tab: " + i18n.T("prompt.help.next", nil) + " | Enter: " + i18n.T("prompt.help.submit", nil) + " | Esc: " + i18n.T("editor.help.cancel", nil)))

	return editorBoxStyle.Render(b.String())
}

// Repo returns the normalized repository
func (m AddPromptModel) Repo() string {
	return m.repo
}

// Version returns the version to freeze, empty for latest
func (m AddPromptModel) Version() string {
	return m.version
}

// IsConfirmed returns whether the user submitted the prompt
func (m AddPromptModel) IsConfirmed() bool {
	return m.confirmed
}

// RunAddPrompt asks for a repository and, when withVersion, a version.
// ok is false when the user cancelled.
func RunAddPrompt(withVersion bool) (repo, version string, ok bool, err error) {
	p := tea.NewProgram(NewAddPromptModel(withVersion))

	finalModel, err := p.Run()
	if err != nil {
		return "", "", false, err
	}

	m := finalModel.(AddPromptModel)
	return m.Repo(), m.Version(), m.IsConfirmed(), nil
}
