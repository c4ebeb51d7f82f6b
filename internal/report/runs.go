package report

import (
	"fmt"
	"io"
	"time"

	"corrscreen/ports"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderRuns lists stored runs, newest first
func RenderRuns(w io.Writer, runs []ports.RunRecord) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "(0 runs)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Created", "Source", "Rows", "Columns", "Pairs", "Selected", "Notices"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.RunID.String(),
			run.CreatedAt.Format(time.RFC3339),
			run.Source,
			run.RowCount,
			run.ColumnCount,
			run.PairsEvaluated,
			run.SelectedCount,
			run.NoticeCount,
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d runs)\n", len(runs))
}

// RenderRun shows one stored run with its selected pairs
func RenderRun(w io.Writer, run *ports.RunRecord) {
	_, _ = fmt.Fprintf(w, "Run %s\n", run.RunID)
	_, _ = fmt.Fprintf(w, "Source: %s\n", run.Source)
	_, _ = fmt.Fprintf(w, "Created: %s\n", run.CreatedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "Rows: %d, Columns: %d, Pairs evaluated: %d\n", run.RowCount, run.ColumnCount, run.PairsEvaluated)
	_, _ = fmt.Fprintf(w, "Fingerprint: %s\n", run.Fingerprint)
	if len(run.Selected) == 0 {
		_, _ = fmt.Fprintln(w, NoCorrelationsMessage)
		return
	}
	RenderResults(w, run.Selected)
}
