package slog_test

import (
	"bytes"
	"context"
	stdslog "log/slog"
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/mock"
	"github.com/fwojciec/adscan/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingTracker_FilterUnprocessed_logs_skip_counts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

	inner := &mock.Tracker{
		FilterUnprocessedFn: func(_ context.Context, urls []string) ([]string, error) {
			return urls[:1], nil
		},
	}
	lt := slog.NewLoggingTracker(inner, logger)

	out, err := lt.FilterUnprocessed(context.Background(), []string{"https://a.example.com/", "https://b.example.com/", "https://c.example.com/"})

	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, buf.String(), "input=3")
	assert.Contains(t, buf.String(), "unprocessed=1")
	assert.Contains(t, buf.String(), "skipped=2")
}

func TestLoggingTracker_ImportRecords_logs_import_count(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

	inner := &mock.Tracker{
		ImportRecordsFn: func(_ context.Context, records []adscan.URLRecord) (int, error) {
			return len(records) - 1, nil
		},
	}
	lt := slog.NewLoggingTracker(inner, logger)

	n, err := lt.ImportRecords(context.Background(), make([]adscan.URLRecord, 5))

	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Contains(t, buf.String(), "candidates=5")
	assert.Contains(t, buf.String(), "imported=4")
}

func TestLoggingTracker_Reset_logs_at_warn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

	lt := slog.NewLoggingTracker(&mock.Tracker{}, logger)

	require.NoError(t, lt.Reset(context.Background()))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "ledger reset")
}

func TestLoggingTracker_quiet_operations_do_not_log(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

	lt := slog.NewLoggingTracker(&mock.Tracker{}, logger)

	require.NoError(t, lt.MarkProcessed(context.Background(), "https://a.example.com/", adscan.StatusSuccess))
	_, err := lt.Stats(context.Background())
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}
