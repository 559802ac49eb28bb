package syncconsole

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"fieldcheck/internal/ports"
)

var (
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// LineReporter prints each progress event as one styled line.
type LineReporter struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.ProgressReporter = (*LineReporter)(nil)

func NewLineReporter(out io.Writer) *LineReporter {
	return &LineReporter{out: out}
}

func (r *LineReporter) OnProgressChange(step string, percentage float64) {
	r.printf("%s %s\n", stepStyle.Render(fmt.Sprintf("[%3.0f%%]", percentage)), step)
}

func (r *LineReporter) OnProgressUpdate(line string) {
	r.printf("%s\n", dimStyle.Render("  "+line))
}

func (r *LineReporter) OnSuccess(message string) {
	r.printf("%s\n", successStyle.Render(message))
}

func (r *LineReporter) OnError(message string) {
	r.printf("%s\n", errorStyle.Render(message))
}

func (r *LineReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, format, args...)
}
