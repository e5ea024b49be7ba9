// Command oahash-benchcmp converts `go test -bench` output to JSON and
// compares two JSON summaries for regressions.
//
//	oahash-benchcmp convert <bench.txt> <out.json> [commit_id] [branch]
//	oahash-benchcmp compare <base.json> <current.json>
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/theflywheel/oahash/internal/benchfmt"
)

// significanceThreshold is the percent change a metric must reach to count.
const significanceThreshold = 5.0

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  oahash-benchcmp convert <bench.txt> <out.json> [commit_id] [branch]")
	fmt.Fprintln(os.Stderr, "  oahash-benchcmp compare <base.json> <current.json>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "convert":
		if len(os.Args) < 4 || len(os.Args) > 6 {
			usage()
		}
		err = convert(os.Args[2], os.Args[3], os.Args[4:])
	case "compare":
		if len(os.Args) != 4 {
			usage()
		}
		var regressions int
		regressions, err = compare(os.Args[2], os.Args[3])
		if err == nil && regressions > 0 {
			fmt.Printf("\nWARNING: %d significant performance regressions detected\n", regressions)
			os.Exit(1)
		}
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convert(in, out string, extra []string) error {
	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "open benchmark output")
	}
	defer f.Close()

	sum, err := benchfmt.Parse(f)
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		sum.CommitID = extra[0]
	}
	if len(extra) > 1 {
		sum.Branch = extra[1]
	}
	if err := benchfmt.Save(out, sum); err != nil {
		return err
	}
	fmt.Printf("Wrote %d benchmark results to %s\n", len(sum.Results), out)
	return nil
}

func compare(basePath, currentPath string) (int, error) {
	base, err := benchfmt.Load(basePath)
	if err != nil {
		return 0, err
	}
	current, err := benchfmt.Load(currentPath)
	if err != nil {
		return 0, err
	}

	comparisons := benchfmt.Compare(base, current, significanceThreshold)
	regressions := 0
	improved := 0
	for _, c := range comparisons {
		switch {
		case c.HasRegressions:
			regressions++
		case c.Score > 0:
			improved++
		}
	}

	fmt.Printf("Benchmark Comparison: %s vs %s\n\n", truncate(base.CommitID, 8), truncate(current.CommitID, 8))
	fmt.Printf("- Total benchmarks compared: %d\n", len(comparisons))
	fmt.Printf("- Improvements: %d\n", improved)
	fmt.Printf("- Significant regressions: %d\n", regressions)
	if len(comparisons) == 0 {
		fmt.Println("\nNo matching benchmarks found for comparison")
		return 0, nil
	}

	for _, c := range comparisons {
		label := "OK"
		switch {
		case c.HasRegressions:
			label = "REGRESSION"
		case c.Score < 0:
			label = "minor"
		case c.Score == 0:
			label = "neutral"
		}
		fmt.Printf("\n[%s] %s\n", label, c.Name)

		metrics := append([]benchfmt.MetricComparison(nil), c.Metrics...)
		sort.Slice(metrics, func(i, j int) bool {
			return abs(metrics[i].PercentChange) > abs(metrics[j].PercentChange)
		})
		for _, m := range metrics {
			if m.PercentChange == 0 {
				continue
			}
			mark := " "
			if m.IsSignificant {
				mark = "+"
				if m.IsRegression {
					mark = "-"
				}
			}
			fmt.Printf("  %s %-20s: %+8.2f%% (%g -> %g)\n", mark, m.Name, m.PercentChange, m.BaseValue, m.CurrentValue)
		}
	}
	return regressions, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
