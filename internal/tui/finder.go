package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/egoavara/brat/internal/i18n"
	"github.com/egoavara/brat/internal/search"
)

// RepoItem is a registered repository shown in the finder
type RepoItem struct {
	search.Entry
	Installed string // installed version, empty when not on disk
	Enabled   bool
	Checksum  string // stylesheet checksum of a theme
	Selected  bool   // user toggled selection
}

// FinderResult holds the result of TUI selection
type FinderResult struct {
	Selected  []RepoItem
	Cancelled bool
}

// ViewMode represents the current view mode
type ViewMode int

const (
	ModeList ViewMode = iota
	ModeConfirm
)

// Model is the bubbletea model for the repository finder
type Model struct {
	action        string // verb shown in the confirm modal
	items         []RepoItem
	filteredItems []int // indexes into items
	cursor        int
	width         int
	height        int
	searchInput   textinput.Model
	mode          ViewMode
	quitting      bool
	confirmed     bool
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	installedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	toggledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	frozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2).
			Align(lipgloss.Center)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// NewModel creates a new finder model
func NewModel(items []RepoItem, action string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	m := Model{
		action:      action,
		items:       items,
		searchInput: ti,
		mode:        ModeList,
	}
	m.applyFilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeConfirm {
		return m.handleConfirmKey(msg)
	}

	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		// If search has text, clear it; otherwise quit
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.applyFilter()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down":
		if m.cursor < len(m.filteredItems)-1 {
			m.cursor++
		}

	case "tab":
		if idx := m.currentIndex(); idx >= 0 {
			m.items[idx].Selected = !m.items[idx].Selected
		}

	case "enter":
		// Without an explicit selection the highlighted item is used
		if len(m.selected()) == 0 {
			if idx := m.currentIndex(); idx >= 0 {
				m.items[idx].Selected = true
			}
		}
		if len(m.selected()) > 0 {
			m.mode = ModeConfirm
		}

	case "backspace":
		val := m.searchInput.Value()
		if len(val) > 0 {
			m.searchInput.SetValue(val[:len(val)-1])
			m.applyFilter()
		}

	default:
		// Any other printable character goes to search
		if len(msg.String()) == 1 && msg.String()[0] >= 32 && msg.String()[0] < 127 {
			m.searchInput.SetValue(m.searchInput.Value() + msg.String())
			m.applyFilter()
		}
	}

	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirmed = true
		m.quitting = true
		return m, tea.Quit

	case "n", "N", "esc", "q":
		m.mode = ModeList
		return m, nil
	}
	return m, nil
}

func (m *Model) applyFilter() {
	entries := make([]search.Entry, len(m.items))
	for i, item := range m.items {
		entries[i] = item.Entry
	}

	results := search.FuzzySearch(entries, m.searchInput.Value())
	m.filteredItems = make([]int, len(results))
	for i, r := range results {
		m.filteredItems[i] = r.Index
	}

	if m.cursor >= len(m.filteredItems) {
		m.cursor = max(0, len(m.filteredItems)-1)
	}
}

func (m Model) currentIndex() int {
	if m.cursor < 0 || m.cursor >= len(m.filteredItems) {
		return -1
	}
	return m.filteredItems[m.cursor]
}

func (m Model) selected() []RepoItem {
	var out []RepoItem
	for _, item := range m.items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

func (m Model) View() string {
	if m.quitting && !m.confirmed {
		return ""
	}

	if m.mode == ModeConfirm {
		return m.renderConfirmModal()
	}

	return m.renderListView()
}

func (m Model) renderListView() string {
	var b strings.Builder

	header := titleStyle.Render(i18n.T("tui.header", map[string]any{"Count": len(m.items)}))
	b.WriteString(header)
	b.WriteString("\n\n")

	// Calculate layout
	listWidth := 48
	previewWidth := max(30, m.width-listWidth-6)
	listHeight := max(5, m.height-8)

	var listLines []string
	for i, idx := range m.filteredItems {
		listLines = append(listLines, m.renderItem(i, m.items[idx]))
	}

	// Paginate if needed
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(listLines))

	visibleList := strings.Join(listLines[start:end], "\n")
	preview := m.renderPreview()

	listBox := lipgloss.NewStyle().Width(listWidth).Render(visibleList)
	previewBox := previewStyle.Width(previewWidth).Height(listHeight).Render(preview)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listBox, "  ", previewBox)
	b.WriteString(content)
	b.WriteString("\n\n")

	// Search bar (always visible)
	searchQuery := m.searchInput.Value()
	if searchQuery != "" {
		b.WriteString("> " + searchQuery + "_")
	} else {
		b.WriteString(helpStyle.Render("> type to filter..."))
	}
	b.WriteString("\n")

	help := helpStyle.Render("↑/↓: move | Tab: toggle | Enter: confirm | Esc: clear/quit")
	b.WriteString(help)

	return b.String()
}

func (m Model) renderItem(pos int, item RepoItem) string {
	cursor := "  "
	if pos == m.cursor {
		cursor = "> "
	}

	var checkbox string
	var style lipgloss.Style

	switch {
	case item.Selected:
		checkbox = "[x]"
		style = toggledStyle
	case item.Version != "":
		checkbox = "[=]"
		style = frozenStyle
	case item.Installed != "":
		checkbox = "[*]"
		style = installedStyle
	default:
		checkbox = "[ ]"
		style = normalStyle
	}

	text := fmt.Sprintf("%s%s %s", cursor, checkbox, item.Repo)

	if pos == m.cursor {
		return selectedStyle.Render(text)
	}
	return style.Render(text)
}

func (m Model) renderPreview() string {
	idx := m.currentIndex()
	if idx < 0 {
		return i18n.T("tui.previewEmpty", nil)
	}

	item := m.items[idx]

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Repository: %s\n", item.Repo))
	b.WriteString(fmt.Sprintf("Type: %s\n", item.Kind))

	if item.Version != "" {
		b.WriteString(frozenStyle.Render(fmt.Sprintf("Frozen: %s", item.Version)) + "\n")
	}
	if item.Checksum != "" {
		sum := item.Checksum
		if len(sum) > 12 {
			sum = sum[:12]
		}
		b.WriteString(fmt.Sprintf("Checksum: %s\n", sum))
	}
	if item.Installed != "" {
		b.WriteString(installedStyle.Render(fmt.Sprintf("Installed: %s", item.Installed)) + "\n")
	}
	if item.Kind == search.KindPlugin {
		b.WriteString(fmt.Sprintf("Enabled: %t\n", item.Enabled))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("https://github.com/%s\n", item.Repo))

	return b.String()
}

func (m Model) renderConfirmModal() string {
	selected := m.selected()

	var b strings.Builder

	b.WriteString(i18n.T("tui.confirmTitle", map[string]any{"Action": m.action}))
	b.WriteString("\n\n")

	b.WriteString(toggledStyle.Render(i18n.T("tui.selected", map[string]any{"Count": len(selected)}, len(selected))))
	b.WriteString("\n")
	for _, item := range selected {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.action, item.Repo))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[y] " + i18n.T("tui.confirm", nil) + "  [n] " + i18n.T("tui.cancel", nil)))

	return modalStyle.Render(b.String())
}

// Result returns the outcome after the program exits
func (m Model) Result() *FinderResult {
	if !m.confirmed {
		return &FinderResult{Cancelled: true}
	}
	return &FinderResult{Selected: m.selected()}
}

// RunRepoFinder launches the interactive fuzzy finder over registered repositories
func RunRepoFinder(items []RepoItem, action string) (*FinderResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%s", i18n.T("tui.noRepos", nil))
	}

	p := tea.NewProgram(NewModel(items, action), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	return finalModel.(Model).Result(), nil
}
