package main

import (
	"fmt"
	"io"

	"mwconv/internal/observ"
)

func printTimings(out io.Writer, label string, report observ.Report) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, "timings %s:\n", label)
	for _, p := range report.Phases {
		fmt.Fprintf(out, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			fmt.Fprintf(out, "  x%d", p.Count)
		}
		if p.Note != "" {
			fmt.Fprintf(out, "  // %s", p.Note)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "  %-12s %8.2f ms\n", "total", report.TotalMS)
}
