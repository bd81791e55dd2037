package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/vnykmshr/apiprobe/internal/domain"
)

// maxErrorWidth truncates long failure causes in the console table.
const maxErrorWidth = 60

// PrintSummary writes a console summary of the report to w
func PrintSummary(w io.Writer, report *domain.Report) {
	_, _ = fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	_, _ = fmt.Fprintln(w, color.New(color.FgCyan, color.Bold).Sprint("API TEST RESULTS"))
	_, _ = fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Test", "Status", "Code", "Time (ms)", "Error"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(true)
	table.SetRowLine(false)

	for i := range report.Tests {
		entry := &report.Tests[i]
		table.Append([]string{
			entry.Name,
			colorStatus(entry.Status),
			derefOr(entry.StatusCode),
			entryTime(entry),
			truncate(derefOr(entry.Error), maxErrorWidth),
		})
	}
	table.Render()

	s := report.Summary
	_, _ = fmt.Fprintf(w, "Total Tests:           %d\n", s.TotalTests)
	_, _ = fmt.Fprintf(w, "Passed:                %s\n", color.GreenString("%d", s.PassedTests))
	_, _ = fmt.Fprintf(w, "Failed:                %s\n", colorFailures(s.FailedTests))
	_, _ = fmt.Fprintf(w, "Pass Rate:             %d%%\n", s.PassRate)
	_, _ = fmt.Fprintf(w, "Average Response Time: %dms\n", s.AverageResponseTime)
	_, _ = fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))
}

func colorStatus(s domain.Status) string {
	if s == domain.StatusPass {
		return color.GreenString(string(s))
	}
	return color.RedString(string(s))
}

func colorFailures(n int) string {
	if n == 0 {
		return fmt.Sprint(n)
	}
	return color.RedString("%d", n)
}

// entryTime shows the sample average for performance entries.
func entryTime(entry *domain.ReportEntry) string {
	if entry.Performance != nil {
		return fmt.Sprintf("avg %d", entry.Performance.AverageTime)
	}
	return derefOr(entry.ResponseTime)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
