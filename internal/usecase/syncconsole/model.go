package syncconsole

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fieldcheck/internal/ports"
)

const maxShownLines = 8

type stepMsg struct {
	step       string
	percentage float64
}

type lineMsg string

type resultMsg struct {
	message string
	failed  bool
}

type flowDoneMsg struct {
	err error
}

// Flow is one sync run reporting through progress.
type Flow func(ctx context.Context, progress ports.ProgressReporter) error

type progressModel struct {
	title      string
	step       string
	percentage float64
	lines      []string
	result     string
	failed     bool
	done       bool
	err        error
	cancel     context.CancelFunc
}

func newProgressModel(title string, cancel context.CancelFunc) *progressModel {
	return &progressModel{title: title, step: "Starting", cancel: cancel}
}

func (m *progressModel) Init() tea.Cmd {
	return nil
}

func (m *progressModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case stepMsg:
		m.step = msg.step
		m.percentage = msg.percentage
	case lineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxShownLines {
			m.lines = m.lines[len(m.lines)-maxShownLines:]
		}
	case resultMsg:
		m.result = msg.message
		m.failed = msg.failed
	case flowDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)

	var builder strings.Builder
	builder.WriteString(titleStyle.Render(m.title))
	builder.WriteString("\n\n")
	builder.WriteString(renderBar(m.percentage, 30))
	builder.WriteString(" ")
	builder.WriteString(stepStyle.Render(m.step))
	builder.WriteString("\n\n")
	for _, line := range m.lines {
		builder.WriteString(dimStyle.Render("  " + line))
		builder.WriteString("\n")
	}
	if m.result != "" {
		builder.WriteString("\n")
		if m.failed {
			builder.WriteString(errorStyle.Render(m.result))
		} else {
			builder.WriteString(successStyle.Render(m.result))
		}
		builder.WriteString("\n")
	}
	if !m.done {
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render("q to abandon"))
		builder.WriteString("\n")
	}
	return builder.String()
}

func renderBar(percentage float64, width int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := int(percentage / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat(".", width-filled), percentage)
}

// programReporter forwards progress events into a running program.
type programReporter struct {
	send func(tea.Msg)
}

func (r programReporter) OnProgressChange(step string, percentage float64) {
	r.send(stepMsg{step: step, percentage: percentage})
}

func (r programReporter) OnProgressUpdate(line string) { r.send(lineMsg(line)) }

func (r programReporter) OnSuccess(message string) { r.send(resultMsg{message: message}) }

func (r programReporter) OnError(message string) { r.send(resultMsg{message: message, failed: true}) }

// Run shows flow's progress in a terminal view and returns the flow's error.
func Run(ctx context.Context, title string, flow Flow, opts ...tea.ProgramOption) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newProgressModel(title, cancel)
	program := tea.NewProgram(model, opts...)

	flowErr := make(chan error, 1)
	go func() {
		err := flow(runCtx, programReporter{send: program.Send})
		flowErr <- err
		program.Send(flowDoneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-flowErr
		return err
	}
	return <-flowErr
}
