package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/adscan"
)

// Compile-time interface verification.
var _ adscan.Tracker = (*Tracker)(nil)

// filterBatchSize bounds the size of IN clauses in FilterUnprocessed.
// SQLite's default parameter limit is 999.
const filterBatchSize = 500

// Tracker implements adscan.Tracker using SQLite.
//
// Read and write errors during a run are logged and handled fail-open: a URL
// whose ledger state cannot be determined is reported as unprocessed rather
// than silently dropped.
type Tracker struct {
	db     *DB
	logger *slog.Logger
}

// NewTracker creates a new Tracker.
func NewTracker(db *DB, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{db: db, logger: logger}
}

// MarkProcessed upserts the outcome for a URL. The normalized URL is the
// primary key, so reprocessing updates the existing record in place.
func (t *Tracker) MarkProcessed(ctx context.Context, url string, status adscan.TaskStatus) error {
	rec := adscan.URLRecord{
		URL:       adscan.NormalizeURL(url),
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := t.db.ExecContext(ctx, `
		INSERT INTO url_records (url, status, timestamp)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET status = excluded.status, timestamp = excluded.timestamp
	`, rec.URL, string(rec.Status), rec.Timestamp.Format(time.RFC3339))

	return err
}

// FilterUnprocessed returns the subsequence of urls, order preserved, absent
// from the ledger or recorded with a non-terminal outcome.
func (t *Tracker) FilterUnprocessed(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	processed := make(map[string]bool)
	for start := 0; start < len(urls); start += filterBatchSize {
		end := min(start+filterBatchSize, len(urls))
		if err := t.queryProcessed(ctx, urls[start:end], processed); err != nil {
			// Fail-open: URLs in this batch stay unfiltered.
			t.logger.Warn("ledger read failed, treating batch as unprocessed",
				"batch_start", start,
				"batch_size", end-start,
				"err", err,
			)
		}
	}

	unprocessed := make([]string, 0, len(urls))
	for _, u := range urls {
		if !processed[adscan.NormalizeURL(u)] {
			unprocessed = append(unprocessed, u)
		}
	}
	return unprocessed, nil
}

// queryProcessed marks the terminally processed members of batch in out.
func (t *Tracker) queryProcessed(ctx context.Context, batch []string, out map[string]bool) error {
	placeholders := strings.Repeat("?,", len(batch))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(batch)+2)
	for _, u := range batch {
		args = append(args, adscan.NormalizeURL(u))
	}
	args = append(args, string(adscan.StatusSuccess), string(adscan.StatusNoData))

	rows, err := t.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT url FROM url_records
		WHERE url IN (%s) AND status IN (?, ?)
	`, placeholders), args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return err
		}
		out[u] = true
	}
	return rows.Err()
}

// Stats returns aggregate record counts grouped by outcome.
func (t *Tracker) Stats(ctx context.Context) (adscan.TrackerStats, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM url_records GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(adscan.TrackerStats)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[adscan.TaskStatus(status)] = count
	}
	return stats, rows.Err()
}

// ImportRecords backfills the ledger from historical result records. Records
// already present are left untouched so a backfill never downgrades a more
// recent outcome.
func (t *Tracker) ImportRecords(ctx context.Context, records []adscan.URLRecord) (int, error) {
	var imported int
	for _, rec := range records {
		rec.URL = adscan.NormalizeURL(rec.URL)
		if err := rec.Validate(); err != nil {
			t.logger.Warn("skipping invalid import record", "url", rec.URL, "err", err)
			continue
		}
		ts := rec.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		res, err := t.db.ExecContext(ctx, `
			INSERT INTO url_records (url, status, timestamp)
			VALUES (?, ?, ?)
			ON CONFLICT(url) DO NOTHING
		`, rec.URL, string(rec.Status), ts.Format(time.RFC3339))
		if err != nil {
			return imported, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			imported++
		}
	}
	return imported, nil
}

// Reset clears all records. Explicit, operator-triggered only.
func (t *Tracker) Reset(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, "DELETE FROM url_records")
	return err
}

// AnalyzeRange reports processed/unprocessed counts for the 1-based inclusive
// range [start, end] of urls.
func (t *Tracker) AnalyzeRange(ctx context.Context, urls []string, start, end int) (*adscan.RangeAnalysis, error) {
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(urls) {
		end = len(urls)
	}
	if start > end {
		return &adscan.RangeAnalysis{Start: start, End: end, FullyProcessed: true}, nil
	}

	slice := urls[start-1 : end]
	unprocessed, err := t.FilterUnprocessed(ctx, slice)
	if err != nil {
		return nil, err
	}

	return &adscan.RangeAnalysis{
		Start:            start,
		End:              end,
		TotalInRange:     len(slice),
		ProcessedCount:   len(slice) - len(unprocessed),
		UnprocessedCount: len(unprocessed),
		FullyProcessed:   len(unprocessed) == 0,
	}, nil
}

// SuggestRanges returns up to count windows of windowSize URLs that still
// contain unprocessed work, in list order.
func (t *Tracker) SuggestRanges(ctx context.Context, urls []string, windowSize, count int) ([]adscan.RangeSuggestion, error) {
	if windowSize <= 0 || count <= 0 || len(urls) == 0 {
		return nil, nil
	}

	var suggestions []adscan.RangeSuggestion
	for start := 1; start <= len(urls) && len(suggestions) < count; start += windowSize {
		end := min(start+windowSize-1, len(urls))
		analysis, err := t.AnalyzeRange(ctx, urls, start, end)
		if err != nil {
			return nil, err
		}
		if analysis.FullyProcessed {
			continue
		}
		suggestions = append(suggestions, adscan.RangeSuggestion{
			Start:            start,
			End:              end,
			UnprocessedCount: analysis.UnprocessedCount,
		})
	}
	return suggestions, nil
}
