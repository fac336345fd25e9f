package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type endpointResolvedMsg struct {
	baseURL string
	err     error
}

// discoveryModel spins while the candidate base URLs are probed.
type discoveryModel struct {
	spinner    spinner.Model
	candidates int
	probe      tea.Cmd
	resolved   endpointResolvedMsg
	finished   bool
}

func (m discoveryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.probe)
}

func (m discoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case endpointResolvedMsg:
		m.resolved = msg
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m discoveryModel) View() string {
	if m.finished {
		return ""
	}

	return fmt.Sprintf("%s Resolving API endpoint (%d candidates)...", m.spinner.View(), m.candidates)
}

// resolveEndpoint runs discover behind a spinner on output and returns the
// base URL it picked.
func resolveEndpoint(ctx context.Context, output io.Writer, candidates []string, discover func(context.Context, []string) (string, error)) (string, error) {
	model := discoveryModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		candidates: len(candidates),
		probe: func() tea.Msg {
			baseURL, err := discover(ctx, candidates)
			return endpointResolvedMsg{baseURL: baseURL, err: err}
		},
	}

	finalModel, err := tea.NewProgram(
		model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return "", err
	}

	result, ok := finalModel.(discoveryModel)
	if !ok {
		return "", fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.resolved.baseURL, result.resolved.err
}
