package mock

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.Tracker = (*Tracker)(nil)

// Tracker is a mock implementation of adscan.Tracker. Nil function fields
// behave as no-ops so tests only wire what they assert on.
type Tracker struct {
	MarkProcessedFn     func(ctx context.Context, url string, status adscan.TaskStatus) error
	FilterUnprocessedFn func(ctx context.Context, urls []string) ([]string, error)
	StatsFn             func(ctx context.Context) (adscan.TrackerStats, error)
	ImportRecordsFn     func(ctx context.Context, records []adscan.URLRecord) (int, error)
	ResetFn             func(ctx context.Context) error
	AnalyzeRangeFn      func(ctx context.Context, urls []string, start, end int) (*adscan.RangeAnalysis, error)
	SuggestRangesFn     func(ctx context.Context, urls []string, windowSize, count int) ([]adscan.RangeSuggestion, error)
}

func (t *Tracker) MarkProcessed(ctx context.Context, url string, status adscan.TaskStatus) error {
	if t.MarkProcessedFn == nil {
		return nil
	}
	return t.MarkProcessedFn(ctx, url, status)
}

func (t *Tracker) FilterUnprocessed(ctx context.Context, urls []string) ([]string, error) {
	if t.FilterUnprocessedFn == nil {
		return urls, nil
	}
	return t.FilterUnprocessedFn(ctx, urls)
}

func (t *Tracker) Stats(ctx context.Context) (adscan.TrackerStats, error) {
	if t.StatsFn == nil {
		return adscan.TrackerStats{}, nil
	}
	return t.StatsFn(ctx)
}

func (t *Tracker) ImportRecords(ctx context.Context, records []adscan.URLRecord) (int, error) {
	if t.ImportRecordsFn == nil {
		return 0, nil
	}
	return t.ImportRecordsFn(ctx, records)
}

func (t *Tracker) Reset(ctx context.Context) error {
	if t.ResetFn == nil {
		return nil
	}
	return t.ResetFn(ctx)
}

func (t *Tracker) AnalyzeRange(ctx context.Context, urls []string, start, end int) (*adscan.RangeAnalysis, error) {
	if t.AnalyzeRangeFn == nil {
		return &adscan.RangeAnalysis{}, nil
	}
	return t.AnalyzeRangeFn(ctx, urls, start, end)
}

func (t *Tracker) SuggestRanges(ctx context.Context, urls []string, windowSize, count int) ([]adscan.RangeSuggestion, error) {
	if t.SuggestRangesFn == nil {
		return nil, nil
	}
	return t.SuggestRangesFn(ctx, urls, windowSize, count)
}
