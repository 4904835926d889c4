package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ochinchina/gotox/types"
)

// PrintSummary renders the run report as a table followed by the
// one-line verdict
func PrintSummary(report *types.RunReport, out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Environment", "Result", "Exit", "Duration"})
	for _, result := range report.Results {
		t.AppendRow(table.Row{
			result.Name,
			string(result.State),
			result.ExitCode,
			result.Duration.Round(time.Millisecond).String(),
		})
	}
	t.Render()

	if report.Succeeded() {
		fmt.Fprintln(out, "congratulations :)")
	} else {
		fmt.Fprintf(out, "evaluation failed :( (%s)\n", strings.Join(report.FailedEnvs(), ", "))
	}
}
