package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, mode string) {
	fmt.Fprintf(w, "autoreconcile: %s\n", mode)
}

// PrintConfiguration prints the engine configuration of a run
func PrintConfiguration(w io.Writer, result *service.RunResult) {
	cfg := result.Config
	fmt.Fprintf(w, "Threshold: >%g | Weights: description=%g counterparty=%g | Workers: %d\n\n",
		cfg.Threshold, cfg.Weights.Description, cfg.Weights.Counterparty, cfg.Workers)
}

// PrintSummary prints the status table, the totals and the files written
func PrintSummary(w io.Writer, result *service.RunResult, written []string) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "%-16s %8s\n", "Status", "Claims")
	for _, st := range status.All {
		fmt.Fprintf(w, "%-16s %8d\n", st.Label(), result.Summary.Count(st))
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Summary: Claims=%d Matches=%d Unmatched=%d\n",
		result.Summary.Total(),
		len(result.Result.Matches),
		len(result.Result.Unmatched))

	if len(written) > 0 {
		fmt.Fprintln(w, "\nWrote:")
		for _, path := range written {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}
}
