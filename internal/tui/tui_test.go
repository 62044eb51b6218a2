package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egoavara/brat/internal/search"
	"github.com/egoavara/brat/internal/settings"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func press(m tea.Model, msgs ...tea.Msg) tea.Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func finderItems() []RepoItem {
	return []RepoItem{
		{Entry: search.Entry{Repo: "a/one", Kind: search.KindPlugin}, Installed: "1.0.0"},
		{Entry: search.Entry{Repo: "b/two", Kind: search.KindPlugin, Version: "0.9.0"}},
		{Entry: search.Entry{Repo: "c/three", Kind: search.KindTheme}},
	}
}

func TestFinderFilterAndConfirm(t *testing.T) {
	m := press(NewModel(finderItems(), "remove"), runes("t"), runes("w"))
	finder := m.(Model)
	require.Len(t, finder.filteredItems, 1)
	assert.Contains(t, finder.View(), "b/two")

	m = press(m, key(tea.KeyEnter))
	assert.Equal(t, ModeConfirm, m.(Model).mode)
	assert.Contains(t, m.View(), "remove b/two")

	m = press(m, runes("y"))
	result := m.(Model).Result()
	assert.False(t, result.Cancelled)
	require.Len(t, result.Selected, 1)
	assert.Equal(t, "b/two", result.Selected[0].Repo)
}

func TestFinderMultiSelect(t *testing.T) {
	m := press(NewModel(finderItems(), "update"),
		key(tea.KeyTab),
		key(tea.KeyDown),
		key(tea.KeyDown),
		key(tea.KeyTab),
		key(tea.KeyEnter),
		key(tea.KeyEnter),
	)

	result := m.(Model).Result()
	require.Len(t, result.Selected, 2)
	assert.Equal(t, "a/one", result.Selected[0].Repo)
	assert.Equal(t, "c/three", result.Selected[1].Repo)
}

func TestFinderCancel(t *testing.T) {
	m := press(NewModel(finderItems(), "remove"), runes("x"), key(tea.KeyEsc))
	finder := m.(Model)
	assert.Empty(t, finder.searchInput.Value())
	assert.False(t, finder.quitting)

	m = press(m, key(tea.KeyEsc))
	assert.True(t, m.(Model).Result().Cancelled)
}

func TestSettingsEditor(t *testing.T) {
	current := settings.Defaults()

	m := press(NewSettingsEditorModel(current), key(tea.KeySpace))
	editor := m.(SettingsEditorModel)
	assert.True(t, editor.Changed())
	assert.False(t, current.UpdateAtStartup)

	m = press(m, key(tea.KeySpace))
	assert.False(t, m.(SettingsEditorModel).Changed())

	m = press(m, key(tea.KeyDown), key(tea.KeySpace), key(tea.KeyEnter))
	editor = m.(SettingsEditorModel)
	require.True(t, editor.IsConfirmed())

	target := settings.Defaults()
	editor.Apply(target)
	assert.False(t, target.UpdateAtStartup)
	assert.True(t, target.UpdateThemesAtStartup)
}

func TestSettingsEditorCancel(t *testing.T) {
	m := press(NewSettingsEditorModel(settings.Defaults()), key(tea.KeySpace), key(tea.KeyEsc))
	assert.False(t, m.(SettingsEditorModel).IsConfirmed())
}

func TestAddPrompt(t *testing.T) {
	m := press(NewAddPromptModel(true),
		runes("https://github.com/o/r.git"),
		key(tea.KeyTab),
		runes("1.2.3"),
		key(tea.KeyEnter),
	)

	prompt := m.(AddPromptModel)
	require.True(t, prompt.IsConfirmed())
	assert.Equal(t, "o/r", prompt.Repo())
	assert.Equal(t, "1.2.3", prompt.Version())
}

func TestAddPromptRejectsInvalidRepo(t *testing.T) {
	m := press(NewAddPromptModel(false), runes("not-a-repo"), key(tea.KeyEnter))

	prompt := m.(AddPromptModel)
	assert.False(t, prompt.IsConfirmed())
	assert.NotEmpty(t, prompt.err)
}

func TestAddPromptFocusMovesBothWays(t *testing.T) {
	// backward keys stay on the first field
	m := press(NewAddPromptModel(true), key(tea.KeyShiftTab), runes("o/r"), key(tea.KeyUp), runes("x"))
	prompt := m.(AddPromptModel)
	assert.Equal(t, 0, prompt.focus)
	assert.Equal(t, "o/rx", prompt.inputs[0].Value())
	assert.Empty(t, prompt.inputs[1].Value())

	m = press(m, key(tea.KeyDown), runes("2.0.0"), key(tea.KeyDown), key(tea.KeyShiftTab), runes("-a"), key(tea.KeyEnter))
	prompt = m.(AddPromptModel)
	require.True(t, prompt.IsConfirmed())
	assert.Equal(t, "o/rx-a", prompt.Repo())
	assert.Equal(t, "2.0.0", prompt.Version())
}

func TestFinderShowsThemeChecksum(t *testing.T) {
	items := []RepoItem{
		{Entry: search.Entry{Repo: "c/theme", Kind: search.KindTheme}, Checksum: "0123456789abcdef"},
	}
	finder := NewModel(items, "update")

	line := finder.renderItem(0, items[0])
	assert.NotContains(t, line, "[=]")

	preview := finder.renderPreview()
	assert.Contains(t, preview, "Checksum: 0123456789ab")
	assert.NotContains(t, preview, "0123456789abc")
	assert.NotContains(t, preview, "Frozen")
}
