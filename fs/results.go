package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/adscan"
	"github.com/google/uuid"
)

// Ensure ResultStore implements adscan.ResultWriter at compile time.
var _ adscan.ResultWriter = (*ResultStore)(nil)

// runFile is the on-disk shape of a run artifact.
type runFile struct {
	RunID       string               `json:"run_id"`
	CreatedAt   time.Time            `json:"created_at"`
	ContentHash string               `json:"content_hash"`
	Results     []*adscan.TaskResult `json:"results"`
}

// ResultStore writes the aggregated result set of a run as a JSON artifact.
// Each run gets its own file named by a fresh run ID; the payload carries a
// content hash so downstream consumers can detect truncated or tampered
// artifacts.
type ResultStore struct {
	dir string
	now func() time.Time
}

// NewResultStore creates a ResultStore writing under dir.
func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir, now: time.Now}
}

// WriteResults persists the result set atomically: written to a temporary
// file, then renamed into place.
func (s *ResultStore) WriteResults(ctx context.Context, results []*adscan.TaskResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	run := runFile{
		RunID:       uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		ContentHash: fmt.Sprintf("%016x", xxhash.Sum64(payload)),
		Results:     results,
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run artifact: %w", err)
	}

	final := filepath.Join(s.dir, "results_"+run.RunID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// ScanResults reads every run artifact under dir and converts its results
// into URL records suitable for importing into the processed-URL ledger.
// Artifacts whose content hash does not match their payload are skipped.
func ScanResults(dir string) ([]adscan.URLRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var records []adscan.URLRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "results_") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var run runFile
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", e.Name(), err)
		}
		payload, err := json.Marshal(run.Results)
		if err != nil {
			return nil, err
		}
		if run.ContentHash != "" && run.ContentHash != fmt.Sprintf("%016x", xxhash.Sum64(payload)) {
			continue
		}
		for _, r := range run.Results {
			if r == nil {
				continue
			}
			records = append(records, adscan.URLRecord{
				URL:       r.URL,
				Status:    r.Status,
				Timestamp: run.CreatedAt,
			})
		}
	}
	return records, nil
}
