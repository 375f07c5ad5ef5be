package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/examport/pkg/domain/model"
)

// printSummary writes the human-readable end-of-run summary. The
// machine-readable counterpart is the report artifact.
func printSummary(w io.Writer, report *model.Report) {
	line := strings.Repeat("=", 60)
	title := color.New(color.Bold)
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	title.Fprintln(w, "EXTRACTION SUMMARY")
	fmt.Fprintln(w, line)

	if report.DryRun {
		title.Fprintln(w, "DRY-RUN: no files were written")
		fmt.Fprintf(w, "Would Fetch:      %d\n", report.WouldFetch)
		fmt.Fprintf(w, "Would Skip:       %d\n", report.WouldSkip)
	}

	fmt.Fprintf(w, "Total Processed:  %d\n", report.TotalProcessed)
	ok.Fprintf(w, "Successful:       %d (%.1f%%)\n", report.Successful, report.SuccessRate)
	bad.Fprintf(w, "Failed:           %d\n", report.Failed)
	fmt.Fprintf(w, "Skipped:          %d\n", report.Skipped)
	fmt.Fprintf(w, "Duplicates:       %d\n", report.Duplicates)
	fmt.Fprintf(w, "Elapsed Time:     %.2f seconds\n", report.ElapsedSeconds)
	fmt.Fprintf(w, "Avg Time/Exam:    %.2f seconds\n", report.AvgTimePerExam)

	if len(report.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Error Breakdown:")
		categories := make([]string, 0, len(report.Errors))
		for category := range report.Errors {
			categories = append(categories, string(category))
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(w, "  %s: %d\n", category, report.Errors[model.ErrorCategory(category)])
		}
	}

	fmt.Fprintln(w, line)
}
