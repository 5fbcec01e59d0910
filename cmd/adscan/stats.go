package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fwojciec/adscan"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Tracker.Stats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	if stats.Total() == 0 {
		fmt.Fprintln(deps.Stdout, "Ledger is empty.")
	} else {
		fmt.Fprintf(deps.Stdout, "Ledger: %d URLs tracked\n", stats.Total())
		for _, status := range []adscan.TaskStatus{adscan.StatusSuccess, adscan.StatusNoData, adscan.StatusError} {
			if n := stats[status]; n > 0 {
				fmt.Fprintf(deps.Stdout, "  %s: %d\n", status, n)
			}
		}
	}

	if c.List == "" {
		return nil
	}

	urls, err := loadURLList(c.List, os.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}

	if c.Range != "" {
		start, end, err := parseRangeSpec(c.Range, len(urls))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
			return err
		}
		analysis, err := deps.Tracker.AnalyzeRange(deps.Ctx, urls, start, end)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Range %d-%d: %d URLs, %d processed, %d unprocessed\n",
			analysis.Start, analysis.End, analysis.TotalInRange,
			analysis.ProcessedCount, analysis.UnprocessedCount)
		if analysis.FullyProcessed {
			fmt.Fprintln(deps.Stdout, "  Range is fully processed.")
		}
	}

	if c.Suggest > 0 {
		suggestions, err := deps.Tracker.SuggestRanges(deps.Ctx, urls, c.WindowSize, c.Suggest)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
			return err
		}
		if len(suggestions) == 0 {
			fmt.Fprintln(deps.Stdout, "No unprocessed ranges found.")
			return nil
		}
		fmt.Fprintln(deps.Stdout, "Unprocessed ranges:")
		for _, s := range suggestions {
			fmt.Fprintf(deps.Stdout, "  --range %d-%d  (%d unprocessed)\n", s.Start, s.End, s.UnprocessedCount)
		}
	}

	return nil
}

// parseRangeSpec parses a 1-based inclusive "start-end" range for analysis.
// Either side may be omitted.
func parseRangeSpec(spec string, listLen int) (int, int, error) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, adscan.Errorf(adscan.EINVALID, "invalid range %q, expected start-end", spec)
	}

	start, end := 1, listLen
	if s := strings.TrimSpace(parts[0]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, adscan.Errorf(adscan.EINVALID, "invalid range start %q", s)
		}
		start = n
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, adscan.Errorf(adscan.EINVALID, "invalid range end %q", s)
		}
		end = n
	}
	return start, end, nil
}
