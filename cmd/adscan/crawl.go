package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	urls, err := loadURLList(c.List, os.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "URL list is empty, nothing to do.")
		return nil
	}

	opts := adscan.Options{
		MaxConcurrency:    c.Concurrency,
		Range:             c.Range,
		ChunkSize:         c.ChunkSize,
		SkipProcessed:     c.SkipProcessed,
		ForceReprocess:    c.Force,
		ResetTracking:     c.ResetTracking,
		PreflightCheck:    c.Preflight,
		SkipDNSFailed:     c.SkipDNSFailed,
		SkipSSLFailed:     c.SkipSSLFailed,
		NavigationTimeout: c.Timeout,
	}

	summary, _, err := deps.Crawler.Run(deps.Ctx, urls, opts)
	if summary != nil {
		printSummary(deps.Stdout, summary)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adscan.ErrorMessage(err))
		return err
	}
	return nil
}

// printSummary renders the run summary for the operator.
func printSummary(w io.Writer, s *crawl.Summary) {
	fmt.Fprintf(w, "Processed %d URLs in %s\n", s.Dispatched, s.Duration.Round(time.Second))
	fmt.Fprintf(w, "  success: %d, no ad-tech: %d, failed: %d\n", s.Succeeded, s.NoData, s.Failed)
	if s.Deduped > 0 {
		fmt.Fprintf(w, "  %d duplicate URLs removed from input\n", s.Deduped)
	}
	if s.LedgerSkip > 0 {
		fmt.Fprintf(w, "  %d already-processed URLs skipped\n", s.LedgerSkip)
	}
	if s.Preflight > 0 {
		fmt.Fprintf(w, "  %d URLs excluded by preflight probes\n", s.Preflight)
	}
	if s.TimeoutsRetried > 0 {
		fmt.Fprintf(w, "  %d timeouts retried, %d recovered\n", s.TimeoutsRetried, s.RetriesRecovered)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

// loadURLList reads one URL per line from the named file, or from stdin when
// name is "-". Blank lines and #-comments are skipped.
func loadURLList(name string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	if name == "-" {
		r = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return nil, adscan.Errorf(adscan.ENOTFOUND, "opening URL list: %v", err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, adscan.Errorf(adscan.EINTERNAL, "reading URL list: %v", err)
	}
	return urls, nil
}
