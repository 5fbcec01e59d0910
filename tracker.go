package adscan

import (
	"context"
	"time"
)

// URLRecord is the dedup ledger entry for a single URL. The normalized URL is
// the unique key; at most one live record exists per URL.
type URLRecord struct {
	URL       string     `json:"url"`
	Status    TaskStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// Validate returns an error if the record contains invalid fields.
func (r *URLRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "record URL required")
	}
	switch r.Status {
	case StatusSuccess, StatusNoData, StatusError:
	default:
		return Errorf(EINVALID, "record status %q invalid", r.Status)
	}
	return nil
}

// TrackerStats holds aggregate ledger counts grouped by outcome.
type TrackerStats map[TaskStatus]int

// Total returns the number of records across all outcomes.
func (s TrackerStats) Total() int {
	var n int
	for _, c := range s {
		n += c
	}
	return n
}

// RangeAnalysis summarizes how much of a 1-based inclusive URL-list range has
// already been processed. Used to avoid wasted preflight and dispatch work
// over already-exhausted ranges.
type RangeAnalysis struct {
	Start            int
	End              int
	TotalInRange     int
	ProcessedCount   int
	UnprocessedCount int
	FullyProcessed   bool
}

// RangeSuggestion is a candidate range containing unprocessed work.
type RangeSuggestion struct {
	Start            int
	End              int
	UnprocessedCount int
}

// Tracker is the persistent dedup ledger of URL outcomes. Implementations
// must support safe concurrent mutation: many tasks complete concurrently and
// each calls MarkProcessed.
//
// Read and write errors during a run are expected to be handled fail-open by
// callers: a URL whose ledger state cannot be determined is treated as
// unprocessed rather than silently lost.
type Tracker interface {
	// MarkProcessed upserts the outcome for a URL. Idempotent: reprocessing
	// updates the existing record rather than duplicating it.
	MarkProcessed(ctx context.Context, url string, status TaskStatus) error

	// FilterUnprocessed returns the subsequence of urls, order preserved,
	// that are absent from the ledger or recorded with a non-terminal
	// outcome.
	FilterUnprocessed(ctx context.Context, urls []string) ([]string, error)

	// Stats returns aggregate record counts grouped by outcome.
	Stats(ctx context.Context) (TrackerStats, error)

	// ImportRecords backfills the ledger from historical result records.
	// Intended for one-time adoption when the ledger is empty; returns the
	// number of records imported.
	ImportRecords(ctx context.Context, records []URLRecord) (int, error)

	// Reset clears all records. Explicit, operator-triggered only.
	Reset(ctx context.Context) error

	// AnalyzeRange reports processed/unprocessed counts for the 1-based
	// inclusive range [start, end] of urls.
	AnalyzeRange(ctx context.Context, urls []string, start, end int) (*RangeAnalysis, error)

	// SuggestRanges returns up to count windows of windowSize URLs that
	// still contain unprocessed work, in list order.
	SuggestRanges(ctx context.Context, urls []string, windowSize, count int) ([]RangeSuggestion, error)
}
