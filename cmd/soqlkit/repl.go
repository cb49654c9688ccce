package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/queryforce/soqlkit/pkg/complete"
	"github.com/queryforce/soqlkit/pkg/format"
	"github.com/queryforce/soqlkit/pkg/lint"
	"github.com/queryforce/soqlkit/pkg/metadata"
)

const (
	maxVisibleSuggestions = 8
	maxScrollback         = 20
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	validStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	listStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	outputStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// suggestionsMsg carries async completion results into the update loop.
// Superseded requests never produce one: the session returns ErrSuperseded
// and the command swallows it.
type suggestionsMsg struct {
	forText   string
	forOffset int
	items     []complete.Suggestion
}

type replModel struct {
	input       textinput.Model
	session     *complete.Session
	suggestions []complete.Suggestion
	selected    int
	scrollback  []string
	history     []string
	historyIdx  int
	quitting    bool
}

// runREPL starts the interactive editor. The UI renders on stderr so
// evaluated output could still be piped if anyone wants to.
func runREPL(provider metadata.Provider) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("repl needs an interactive terminal (pipe input to 'soqlkit lint' instead)")
	}

	ti := textinput.New()
	ti.Prompt = promptStyle.Render("soql> ")
	ti.Placeholder = "SELECT Id FROM Account"
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 100

	m := replModel{
		input:      ti,
		session:    complete.NewSession(provider, nil),
		historyIdx: -1,
	}

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	_, err := p.Run()
	return err
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

// suggestCmd snapshots the current text and cursor and resolves suggestions
// off the update loop. Session.Complete enforces last-request-wins across
// overlapping keystrokes.
func (m replModel) suggestCmd() tea.Cmd {
	text := m.input.Value()
	offset := byteOffset(text, m.input.Position())
	session := m.session
	return func() tea.Msg {
		items, err := session.Complete(context.Background(), complete.Request{Text: text, Offset: offset})
		if err != nil {
			return nil
		}
		return suggestionsMsg{forText: text, forOffset: offset, items: items}
	}
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestionsMsg:
		// Drop results resolved for a document state we already left.
		if msg.forText != m.input.Value() || msg.forOffset != byteOffset(m.input.Value(), m.input.Position()) {
			return m, nil
		}
		m.suggestions = msg.items
		if m.selected >= len(m.suggestions) {
			m.selected = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.quitting = true
				return m, tea.Quit
			}

		case tea.KeyTab:
			if len(m.suggestions) > 0 {
				m = m.acceptSuggestion()
				return m, m.suggestCmd()
			}
			return m, nil

		case tea.KeyUp:
			if len(m.suggestions) > 0 {
				m.selected = (m.selected - 1 + len(m.suggestions)) % len(m.suggestions)
				return m, nil
			}
			return m.recallHistory(-1), nil

		case tea.KeyDown:
			if len(m.suggestions) > 0 {
				m.selected = (m.selected + 1) % len(m.suggestions)
				return m, nil
			}
			return m.recallHistory(1), nil

		case tea.KeyEnter:
			return m.evaluate()
		}
	}

	prevValue := m.input.Value()
	prevPos := m.input.Position()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != prevValue || m.input.Position() != prevPos {
		return m, tea.Batch(cmd, m.suggestCmd())
	}
	return m, cmd
}

// acceptSuggestion splices the highlighted suggestion into the input over
// its replace range and moves the cursor past the inserted text.
func (m replModel) acceptSuggestion() replModel {
	s := m.suggestions[m.selected]
	if s.IsError() {
		return m
	}

	text := complete.Apply(m.input.Value(), s)
	m.input.SetValue(text)
	m.input.SetCursor(runePosition(text, s.ReplaceStart+len(s.GetInsertText())))
	m.suggestions = nil
	m.selected = 0
	return m
}

// evaluate checks the entered query, appends the verdict to the scrollback,
// and clears the input for the next one.
func (m replModel) evaluate() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}
	if query == "exit" || query == "quit" {
		m.quitting = true
		return m, tea.Quit
	}

	m.history = append(m.history, query)
	m.historyIdx = -1

	var b strings.Builder
	b.WriteString(promptStyle.Render("soql> ") + query + "\n")

	result := lint.Analyze(query)
	if result.IsValid {
		b.WriteString(validStyle.Render("valid") + "\n")
		b.WriteString(outputStyle.Render(format.PrettyString(query)) + "\n")
	} else {
		for _, e := range result.Errors {
			b.WriteString(errorStyle.Render(e.Error()) + "\n")
			if e.Suggestion != "" {
				b.WriteString(hintStyle.Render("  "+e.Suggestion) + "\n")
			}
		}
	}

	m.scrollback = append(m.scrollback, b.String())
	if len(m.scrollback) > maxScrollback {
		m.scrollback = m.scrollback[len(m.scrollback)-maxScrollback:]
	}

	m.input.SetValue("")
	m.suggestions = nil
	m.selected = 0
	return m, nil
}

// recallHistory moves through previously entered queries when the
// suggestion list is not capturing the arrow keys.
func (m replModel) recallHistory(dir int) replModel {
	if len(m.history) == 0 {
		return m
	}
	if m.historyIdx == -1 {
		if dir > 0 {
			return m
		}
		m.historyIdx = len(m.history)
	}
	m.historyIdx += dir
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx >= len(m.history) {
		m.historyIdx = -1
		m.input.SetValue("")
		return m
	}
	m.input.SetValue(m.history[m.historyIdx])
	m.input.CursorEnd()
	return m
}

func (m replModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("soqlkit repl"))
	b.WriteString(helpStyle.Render("  tab: accept  up/down: select  enter: check  esc: quit"))
	b.WriteString("\n\n")

	for _, entry := range m.scrollback {
		b.WriteString(entry)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	// Window the list around the highlighted entry.
	start := 0
	if m.selected >= maxVisibleSuggestions {
		start = m.selected - maxVisibleSuggestions + 1
	}
	end := start + maxVisibleSuggestions
	if end > len(m.suggestions) {
		end = len(m.suggestions)
	}
	for i := start; i < end; i++ {
		s := m.suggestions[i]
		row := fmt.Sprintf("%-28s %s", s.Label, s.Kind)
		if s.Detail != "" {
			row += "  " + s.Detail
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render(" " + row + " "))
		} else {
			b.WriteString(listStyle.Render(" " + row + " "))
		}
		b.WriteString("\n")
	}
	if len(m.suggestions) > end {
		b.WriteString(helpStyle.Render(fmt.Sprintf(" … %d more", len(m.suggestions)-end)))
		b.WriteString("\n")
	}

	return b.String()
}

// byteOffset converts the textinput's rune cursor position to the byte
// offset the completion engine expects.
func byteOffset(s string, runePos int) int {
	runes := []rune(s)
	if runePos < 0 {
		return 0
	}
	if runePos > len(runes) {
		return len(s)
	}
	return len(string(runes[:runePos]))
}

// runePosition converts a byte offset back to a rune position for SetCursor.
func runePosition(s string, byteOff int) int {
	if byteOff < 0 {
		return 0
	}
	if byteOff > len(s) {
		byteOff = len(s)
	}
	return len([]rune(s[:byteOff]))
}
