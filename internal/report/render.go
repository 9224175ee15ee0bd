package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects how the summary is written.
type Format string

// Supported summary formats.
const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name. An empty name selects text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want text, json or table)", ErrUnknownFormat, name)
	}
}

// Summary box styling.
const (
	boxPaddingX = 1
	labelWidth  = 16
)

//nolint:gochecknoglobals // Lip Gloss styles are immutable values.
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, boxPaddingX)
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Width(labelWidth).Faint(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// WriteSummary writes s to w in the requested format.
func WriteSummary(w io.Writer, s Summary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatTable:
		if _, err := fmt.Fprintln(w, s.Line()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, renderTable(s))
		return err
	case FormatText, "":
		_, err := fmt.Fprintln(w, s.Line())
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// renderTable renders the summary counters in a bordered box.
func renderTable(s Summary) string {
	p := message.NewPrinter(language.English)

	row := func(label, value string) string {
		return labelStyle.Render(label) + value
	}

	rows := []string{titleStyle.Render("Benchmark summary")}
	if s.RunID != "" {
		rows = append(rows, row("Run ID", s.RunID))
	}
	rows = append(rows,
		row("Transactions", p.Sprintf("%d", s.Total)),
		row("Processed", p.Sprintf("%d", s.Processed)),
		row("Batches", p.Sprintf("%d in %d waves", s.Batches, s.Waves)),
		row("Peak in flight", p.Sprintf("%d", s.PeakInFlight)),
		row("Duration", FormatDuration(s.Elapsed)),
		row("Throughput", p.Sprintf("%.2f tx/s", s.TPS)),
	)

	failures := p.Sprintf("%d transactions, %d batches", s.FailedUnits, s.FailedBatches)
	if s.FailedBatches > 0 {
		failures = warnStyle.Render(failures)
	}
	rows = append(rows, row("Failures", failures))

	if s.Interrupted {
		rows = append(rows, warnStyle.Render("Run interrupted before all waves were dispatched"))
	}

	return boxStyle.Render(strings.Join(rows, "\n"))
}
