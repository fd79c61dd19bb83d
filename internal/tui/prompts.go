package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCanceled is returned when the user aborts a prompt
var ErrCanceled = errors.New("canceled")

// ErrNoOptions is returned when a selection has nothing to choose from
var ErrNoOptions = errors.New("no options provided")

// Prompter asks the user questions between completed steps
type Prompter interface {
	// Confirm asks a yes/no question; def is the answer on plain Enter
	Confirm(message string, def bool) (bool, error)
	// SelectBranch asks the user to pick one of options
	SelectBranch(title string, options []string, current string) (string, error)
}

// NewPrompter returns a terminal prompter when the session is interactive,
// otherwise one that always takes the default
func NewPrompter() Prompter {
	if IsInteractive() {
		return TerminalPrompter{}
	}
	return DefaultPrompter{}
}

// DefaultPrompter answers every prompt with its default. Used when stdin is
// not a terminal or STK_NON_INTERACTIVE is set.
type DefaultPrompter struct{}

// Confirm returns def
func (DefaultPrompter) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}

// SelectBranch cannot choose on the user's behalf
func (DefaultPrompter) SelectBranch(title string, _ []string, _ string) (string, error) {
	return "", fmt.Errorf("%s: a branch name is required when not running interactively", title)
}

// TerminalPrompter renders prompts on the controlling terminal
type TerminalPrompter struct{}

// Confirm asks a yes/no question with survey
func (TerminalPrompter) Confirm(message string, def bool) (bool, error) {
	answer := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, ErrCanceled
		}
		return false, err
	}
	return answer, nil
}

// SelectBranch shows a filterable branch picker
func (TerminalPrompter) SelectBranch(title string, options []string, current string) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}

	m := NewBranchSelectModel(title, options, current)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return "", err
	}

	final, ok := model.(BranchSelectModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type")
	}
	if final.Err != nil {
		return "", final.Err
	}
	return final.Selected, nil
}

// BranchSelectModel is a branch selection prompt model with filtering
type BranchSelectModel struct {
	Title    string
	Choices  []string
	Filtered []string
	Current  string
	Cursor   int
	Selected string
	Done     bool
	Err      error
	filter   textinput.Model
}

// NewBranchSelectModel creates a picker with the cursor on current
func NewBranchSelectModel(title string, options []string, current string) BranchSelectModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Focus()

	m := BranchSelectModel{
		Title:    title,
		Choices:  options,
		Filtered: options,
		Current:  current,
		filter:   ti,
	}
	for i, option := range options {
		if option == current {
			m.Cursor = i
		}
	}
	return m
}

// Init initializes the bubbletea model
func (m BranchSelectModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles message updates for the bubbletea model
func (m BranchSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if m.Cursor >= 0 && m.Cursor < len(m.Filtered) {
				m.Selected = m.Filtered[m.Cursor]
				m.Done = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Err = ErrCanceled
			m.Done = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyShiftTab:
			if len(m.Filtered) > 0 {
				m.Cursor = (m.Cursor - 1 + len(m.Filtered)) % len(m.Filtered)
			}
			return m, nil
		case tea.KeyDown, tea.KeyTab:
			if len(m.Filtered) > 0 {
				m.Cursor = (m.Cursor + 1) % len(m.Filtered)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	previous := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != previous {
		m.applyFilter()
	}
	return m, cmd
}

func (m *BranchSelectModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.Filtered = m.Filtered[:0:0]
	for _, choice := range m.Choices {
		if needle == "" || strings.Contains(strings.ToLower(choice), needle) {
			m.Filtered = append(m.Filtered, choice)
		}
	}
	m.Cursor = 0
}

// View renders the picker
func (m BranchSelectModel) View() string {
	if m.Done {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.Title))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.Filtered) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("  no matching branches"))
		b.WriteString("\n")
	}
	for i, choice := range m.Filtered {
		label := choice
		if choice == m.Current {
			label += " (current)"
		}
		if i == m.Cursor {
			b.WriteString(fmt.Sprintf("  → %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(label)))
		} else {
			b.WriteString(fmt.Sprintf("    %s\n", label))
		}
	}

	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("\n(↑/↓ to select, Enter to confirm, Ctrl+C to cancel)"))
	return lipgloss.NewStyle().Margin(1, 0).Render(b.String())
}
