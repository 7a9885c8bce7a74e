package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/chronos-tachyon/rxcollate/internal/build"
)

func printSummary(w io.Writer, report *build.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	passed := report.Passed()
	failed := report.Failed()
	memoized := 0
	for _, r := range report.Results {
		if r.Memoized {
			memoized++
		}
	}

	fmt.Fprintln(w)
	bold.Fprintf(w, "%d folders", len(report.Results))
	fmt.Fprint(w, ", ")
	green.Fprintf(w, "%d passed", passed)
	fmt.Fprint(w, ", ")
	if failed > 0 {
		red.Fprintf(w, "%d failed", failed)
	} else {
		fmt.Fprintf(w, "%d failed", failed)
	}
	if memoized > 0 {
		fmt.Fprint(w, ", ")
		yellow.Fprintf(w, "%d unchanged", memoized)
	}
	fmt.Fprintf(w, ", %d patterns\n", len(report.Patterns))
}
