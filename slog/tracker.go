// Package slog provides logging decorators for crawl engine components.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
)

// Ensure LoggingTracker implements adscan.Tracker.
var _ adscan.Tracker = (*LoggingTracker)(nil)

// LoggingTracker wraps a Tracker with logging for the operations whose cost
// scales with the input list: ledger filtering, imports, and resets. Per-URL
// marking stays quiet; it happens once per task.
type LoggingTracker struct {
	next   adscan.Tracker
	logger *slog.Logger
}

// NewLoggingTracker creates a new LoggingTracker.
func NewLoggingTracker(next adscan.Tracker, logger *slog.Logger) *LoggingTracker {
	return &LoggingTracker{next: next, logger: logger}
}

// MarkProcessed delegates to the wrapped tracker.
func (t *LoggingTracker) MarkProcessed(ctx context.Context, url string, status adscan.TaskStatus) error {
	return t.next.MarkProcessed(ctx, url, status)
}

// FilterUnprocessed logs how many URLs the ledger filtered out and delegates.
func (t *LoggingTracker) FilterUnprocessed(ctx context.Context, urls []string) (out []string, err error) {
	defer func(begin time.Time) {
		t.logger.Info("ledger filter",
			"input", len(urls),
			"unprocessed", len(out),
			"skipped", len(urls)-len(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.FilterUnprocessed(ctx, urls)
}

// Stats delegates to the wrapped tracker.
func (t *LoggingTracker) Stats(ctx context.Context) (adscan.TrackerStats, error) {
	return t.next.Stats(ctx)
}

// ImportRecords logs the import outcome and delegates.
func (t *LoggingTracker) ImportRecords(ctx context.Context, records []adscan.URLRecord) (n int, err error) {
	defer func(begin time.Time) {
		t.logger.Info("ledger import",
			"candidates", len(records),
			"imported", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return t.next.ImportRecords(ctx, records)
}

// Reset logs that the ledger was cleared and delegates.
func (t *LoggingTracker) Reset(ctx context.Context) (err error) {
	defer func() {
		t.logger.Warn("ledger reset", "err", err)
	}()
	return t.next.Reset(ctx)
}

// AnalyzeRange delegates to the wrapped tracker.
func (t *LoggingTracker) AnalyzeRange(ctx context.Context, urls []string, start, end int) (*adscan.RangeAnalysis, error) {
	return t.next.AnalyzeRange(ctx, urls, start, end)
}

// SuggestRanges delegates to the wrapped tracker.
func (t *LoggingTracker) SuggestRanges(ctx context.Context, urls []string, windowSize, count int) ([]adscan.RangeSuggestion, error) {
	return t.next.SuggestRanges(ctx, urls, windowSize, count)
}
