package status

import (
	"errors"
	"fmt"
	"io"

	"github.com/bnema/nova-runner/internal/application"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// tally counts accounts by token state for the footer line.
type tally struct {
	valid   int
	expired int
	never   int
}

func countTokens(statuses []application.Status) tally {
	var t tally
	for _, status := range statuses {
		switch {
		case status.Token == nil:
			t.never++
		case status.Token.Valid:
			t.valid++
		default:
			t.expired++
		}
	}
	return t
}

type sessionsRenderedMsg struct {
	body   string
	counts tally
}

type sessionsModel struct {
	statuses []application.Status
	opts     RenderOptions
	styles   styles
	body     string
	counts   tally
}

func (m sessionsModel) Init() tea.Cmd {
	statuses, opts, s := m.statuses, m.opts, m.styles
	return func() tea.Msg {
		return sessionsRenderedMsg{
			body:   renderView(statuses, opts, s),
			counts: countTokens(statuses),
		}
	}
}

func (m sessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	rendered, ok := msg.(sessionsRenderedMsg)
	if !ok {
		return m, nil
	}

	m.body = rendered.body
	m.counts = rendered.counts
	return m, tea.Quit
}

func (m sessionsModel) View() string {
	if len(m.statuses) == 0 {
		return m.body
	}

	footer := m.styles.header.Render(fmt.Sprintf(
		"valid: %d  expired: %d  never logged in: %d",
		m.counts.valid, m.counts.expired, m.counts.never,
	))
	return lipgloss.JoinVertical(lipgloss.Left, m.body, m.styles.section.Render(footer))
}

// Render lays out the account sessions through a one-shot bubbletea program
// so the output picks up the terminal's color profile.
func Render(statuses []application.Status, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		sessionsModel{statuses: statuses, opts: opts, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(sessionsModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
