package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

const progressBarWidth = 32

// tokenDoneMsg is sent by the batch for every finished token.
type tokenDoneMsg pipeline.Event

// batchDoneMsg ends the program.
type batchDoneMsg struct {
	report *pipeline.Report
	err    error
}

// progressModel shows a live bar for one batch. Ctrl+C cancels the batch but
// keeps the view open until in-flight tokens drain.
type progressModel struct {
	title    string
	total    int
	done     int
	failed   int
	last     string
	stopping bool
	cancel   context.CancelFunc

	report *pipeline.Report
	err    error
}

func newProgressModel(title string, total int, cancel context.CancelFunc) progressModel {
	return progressModel{title: title, total: total, cancel: cancel}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.stopping {
				m.stopping = true
				m.cancel()
			}
		}
	case tokenDoneMsg:
		m.done = msg.Done
		m.last = msg.TokenID
		if msg.Err != nil {
			m.failed++
		}
	case batchDoneMsg:
		m.report = msg.report
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.report != nil || m.err != nil {
		return ""
	}
	filled := 0
	if m.total > 0 {
		filled = m.done * progressBarWidth / m.total
	}
	bar := styleIconSuccess.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", progressBarWidth-filled))

	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title) + "\n\n")
	fmt.Fprintf(&b, "%s %s/%d", bar, StyleNumber.Render(fmt.Sprint(m.done)), m.total)
	if m.failed > 0 {
		b.WriteString("  " + styleIconError.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	b.WriteString("\n")
	if m.last != "" {
		b.WriteString(StyleDim.Render("last: #"+m.last) + "\n")
	}
	help := "ctrl+c to cancel"
	if m.stopping {
		help = "cancelling, waiting for running tokens"
	}
	b.WriteString("\n" + lipgloss.NewStyle().Foreground(colorDim).Italic(true).Render(help) + "\n")
	return b.String()
}

// batchFunc runs a batch and reports each finished token to progress.
type batchFunc func(ctx context.Context, progress func(pipeline.Event)) (*pipeline.Report, error)

// runWithProgress runs fn under a full-screen progress bar on stderr.
func runWithProgress(ctx context.Context, title string, total int, fn batchFunc) (*pipeline.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, total, cancel), tea.WithOutput(os.Stderr))
	go func() {
		report, err := fn(ctx, func(ev pipeline.Event) { p.Send(tokenDoneMsg(ev)) })
		p.Send(batchDoneMsg{report: report, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(progressModel)
	return m.report, m.err
}
