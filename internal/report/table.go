package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"walksat/internal/task"
)

// PrintTrialSummary renders one table row per trial result, followed
// (when best is non-nil) by a separate "best: ..." line below the
// table, the Go analogue of the teacher's batch-summary
// printouts, now backed by tablewriter instead of plain fmt.Printf
// since the teacher's own go.mod already commits to it.
func PrintTrialSummary(w io.Writer, results []task.Result, best *task.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Seed", "Best Unsat Weight", "Satisfiable", "Flips"})
	table.SetAutoFormatHeaders(false)

	for _, r := range results {
		table.Append([]string{
			fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%.4f", r.BestUnsatWeight),
			fmt.Sprintf("%t", r.BestUnsatWeight == 0),
			fmt.Sprintf("%d", r.Flips),
		})
	}
	table.Render()

	if best == nil {
		return
	}
	fmt.Fprintf(w, "\nbest: seed=%d unsat_weight=%.4f satisfiable=%t flips=%d\n",
		best.Seed, best.BestUnsatWeight, best.BestUnsatWeight == 0, best.Flips)
}
