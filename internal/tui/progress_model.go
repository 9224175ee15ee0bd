// Package tui provides the optional live progress view for benchmark runs.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/txbench/internal/engine/batch"
)

// Default dimensions for the progress view.
const (
	defaultBarWidth = 60
	maxBarWidth     = 100
	barPadding      = 4
)

// ProgressMsg is sent after every completed wave.
type ProgressMsg struct {
	Snapshot batch.ProgressSnapshot
}

// DoneMsg is sent once the run has finished.
type DoneMsg struct {
	Err error
}

//nolint:gochecknoglobals // Lip Gloss styles are immutable values.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statsStyle = lipgloss.NewStyle().Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// ProgressModel is the Bubble Tea model showing wave-by-wave progress.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type ProgressModel struct {
	bar      progress.Model
	snapshot batch.ProgressSnapshot
	runID    string
	done     bool
	aborted  bool
	err      error

	// cancel stops the run when the user quits early. May be nil.
	cancel context.CancelFunc
}

// NewProgressModel creates a progress model for a run of total units.
func NewProgressModel(runID string, total int, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
		snapshot: batch.ProgressSnapshot{TotalItems: total},
		runID:    runID,
		cancel:   cancel,
	}
}

// Init initializes the model (Bubble Tea interface).
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.snapshot = msg.Snapshot
		return m, nil
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-barPadding, 1), maxBarWidth)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the progress bar (Bubble Tea interface).
func (m ProgressModel) View() string {
	p := message.NewPrinter(language.English)
	s := m.snapshot

	var b strings.Builder
	title := "Simulating transactions"
	if m.runID != "" {
		title += " (" + m.runID + ")"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(s.Fraction()))
	b.WriteString("\n\n")
	b.WriteString(statsStyle.Render(p.Sprintf("%d / %d transactions  %d / %d batches  %.0f tx/s",
		s.ProcessedItems, s.TotalItems, s.ProcessedBatches, s.TotalBatches, s.ItemsPerSecond)))

	if s.Remaining > 0 && !m.done {
		b.WriteString("\n")
		b.WriteString(statsStyle.Render("ETA " + s.Remaining.Round(time.Millisecond).String()))
	}

	if s.FailedBatches > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d batches failed", s.FailedBatches)))
	}

	switch {
	case m.aborted:
		b.WriteString("\n" + warnStyle.Render("Stopping: interrupting in-flight batches..."))
	case m.done:
		b.WriteString("\n")
	default:
		b.WriteString("\n" + statsStyle.Render("q to stop"))
	}
	b.WriteString("\n")

	return b.String()
}

// Snapshot returns the latest progress shown by the model.
func (m ProgressModel) Snapshot() batch.ProgressSnapshot {
	return m.snapshot
}

// Aborted reports whether the user asked to stop the run.
func (m ProgressModel) Aborted() bool {
	return m.aborted
}

// RunWithProgress runs work while displaying model on out.
// work receives a progress callback to hand to the scheduler. It returns the
// final model state and work's error, joined with any error from the UI program.
func RunWithProgress(
	in io.Reader,
	out io.Writer,
	model ProgressModel,
	work func(batch.ProgressCallback) error,
) (ProgressModel, error) {
	prog := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))

	workErr := make(chan error, 1)
	go func() {
		err := work(func(s batch.ProgressSnapshot) {
			prog.Send(ProgressMsg{Snapshot: s})
		})
		prog.Send(DoneMsg{Err: err})
		workErr <- err
	}()

	finalModel, uiErr := prog.Run()
	if uiErr != nil && model.cancel != nil {
		model.cancel()
	}

	final, ok := finalModel.(ProgressModel)
	if !ok {
		final = model
	}

	return final, errors.Join(<-workErr, uiErr)
}
