package script

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hylla/dragboard/internal/app"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// reportExport is the JSON layout of a replay report.
type reportExport struct {
	Report
	Passed bool            `json:"passed"`
	Board  app.BoardExport `json:"board"`
}

// RenderJSON writes the report and final board as indented JSON.
func RenderJSON(w io.Writer, r Report) error {
	encoded, err := json.MarshalIndent(reportExport{
		Report: r,
		Passed: r.Passed(),
		Board:  r.Final.Export(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = w.Write(append(encoded, '\n'))
	return err
}

// RenderText writes the step table, the final board table and a summary line.
func RenderText(w io.Writer, r Report) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	statusStyles := map[StepStatus]lipgloss.Style{
		StatusOK:         lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusDiagnostic: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	steps := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("#", "Op", "Status", "Version", "Detail").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(r.Steps) {
				return statusStyles[r.Steps[row].Status]
			}
			return lipgloss.NewStyle()
		})
	for _, step := range r.Steps {
		steps.Row(strconv.Itoa(step.Index), string(step.Op), string(step.Status), strconv.FormatUint(step.Version, 10), step.Detail)
	}

	board := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Column", "Title", "Tasks").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
	for _, column := range r.Final.OrderedColumns() {
		board.Row(column.ID, column.Title, strings.Join(column.TaskIDs, ", "))
	}

	title := r.Script
	if title == "" {
		title = "script"
	}
	outcome := "passed"
	switch {
	case r.Aborted:
		outcome = "aborted"
	case r.Failures > 0:
		outcome = "failed"
	}
	summary := fmt.Sprintf("%s: %s, %d steps, %d diagnostics, %d failures, board version %d",
		title, outcome, len(r.Steps), r.Diagnostics, r.Failures, r.Final.Version())

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", steps.Render(), board.Render(), summary)
	return err
}
