package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestSelector_MovesAndSelects(t *testing.T) {
	m := press(selectorModel{question: "Pick", choices: []string{"a", "b", "c"}}, down, down, enter)

	result := m.(selectorModel)
	assert.Equal(t, "c", result.choice)
	assert.False(t, result.canceled)
}

func TestSelector_Wraps(t *testing.T) {
	m := press(selectorModel{choices: []string{"a", "b", "c"}}, up)
	assert.Equal(t, 2, m.(selectorModel).cursor)

	m = press(m, down)
	assert.Equal(t, 0, m.(selectorModel).cursor)
}

func TestSelector_Cancel(t *testing.T) {
	m := press(selectorModel{choices: []string{"a"}}, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	result := m.(selectorModel)
	assert.True(t, result.canceled)
	assert.Empty(t, result.choice)
}

func TestSelector_ViewMarksCursor(t *testing.T) {
	view := selectorModel{question: "Which style?", choices: []string{"Classic", "Modern"}, cursor: 1}.View()
	assert.Contains(t, view, "Which style?")
	assert.Contains(t, view, "Classic")
	assert.Contains(t, view, "> ")
}

func TestTextInput_TypeAndConfirm(t *testing.T) {
	var m tea.Model = newTextInput("Job URL?", "https://")
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://x.io")}, enter)

	result := m.(textInputModel)
	assert.Equal(t, "https://x.io", result.textInput.Value())
	assert.False(t, result.canceled)
}

func TestTextInput_Escape(t *testing.T) {
	m := press(newTextInput("Job URL?", ""), esc)
	assert.True(t, m.(textInputModel).canceled)
}

func TestTerminal_SelectRequiresChoices(t *testing.T) {
	_, err := Terminal{}.Select("Pick", nil)
	require.Error(t, err)
}
