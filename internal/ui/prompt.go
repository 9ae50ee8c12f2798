// Package ui holds the interactive terminal prompts of the CLI.
package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// ErrCanceled is returned when the user quits a prompt.
var ErrCanceled = errors.New("prompt canceled")

// Prompter asks the user questions.
type Prompter interface {
	Select(question string, choices []string) (string, error)
	Input(question, placeholder string) (string, error)
}

// Terminal is a Prompter backed by bubbletea programs.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t Terminal) options() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}
	return opts
}

// Select shows a single-selection list and returns the chosen entry.
func (t Terminal) Select(question string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("no choices to select from")
	}
	m, err := tea.NewProgram(selectorModel{question: question, choices: choices}, t.options()...).Run()
	if err != nil {
		return "", err
	}
	result := m.(selectorModel)
	if result.canceled || result.choice == "" {
		return "", ErrCanceled
	}
	return result.choice, nil
}

// Input shows a text field. An empty answer is allowed.
func (t Terminal) Input(question, placeholder string) (string, error) {
	m, err := tea.NewProgram(newTextInput(question, placeholder), t.options()...).Run()
	if err != nil {
		return "", err
	}
	result := m.(textInputModel)
	if result.canceled {
		return "", ErrCanceled
	}
	return strings.TrimSpace(result.textInput.Value()), nil
}

// AskSelect runs Select on the process terminal.
func AskSelect(question string, choices []string) (string, error) {
	return Terminal{}.Select(question, choices)
}

// AskInput runs Input on the process terminal.
func AskInput(question, placeholder string) (string, error) {
	return Terminal{}.Input(question, placeholder)
}

type selectorModel struct {
	question string
	cursor   int
	choices  []string
	choice   string
	canceled bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.canceled = true
		return m, tea.Quit
	case "enter":
		m.choice = m.choices[m.cursor]
		return m, tea.Quit
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	}
	return m, nil
}

func (m selectorModel) View() string {
	var sb strings.Builder
	sb.WriteString(color.New(color.Bold).Sprint(m.question) + "\n\n")

	for i, choice := range m.choices {
		cursor := "  "
		if m.cursor == i {
			cursor = color.CyanString("> ")
			choice = color.CyanString(choice)
		}
		sb.WriteString(fmt.Sprintf("%s%s\n", cursor, choice))
	}

	sb.WriteString("\n(Use arrow keys to navigate, enter to select, q to quit)\n")
	return sb.String()
}

type textInputModel struct {
	question  string
	textInput textinput.Model
	canceled  bool
}

func newTextInput(question, placeholder string) textInputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 72

	return textInputModel{question: question, textInput: ti}
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	return fmt.Sprintf(
		"%s\n\n%s\n\n(enter to confirm, leave empty to skip, esc to quit)",
		color.New(color.Bold).Sprint(m.question),
		m.textInput.View(),
	)
}
