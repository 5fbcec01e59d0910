package adscan

import "context"

// PageProcessor executes the per-page task: navigate to a URL in a browser
// context, wait for rendering, and extract ad-tech integrations.
//
// Process returns a TaskResult for every per-task failure (navigation errors,
// extraction errors, detached frames); a non-nil error is returned only for
// infrastructure-level failures (the driver itself is broken) and signals the
// caller to fall back to a different execution strategy.
type PageProcessor interface {
	Process(ctx context.Context, url string) (*TaskResult, error)

	// Close releases browser resources. Must be called when the processor is
	// no longer needed.
	Close() error
}

// ProcessorFactory creates PageProcessors. The execution dispatcher uses it
// to build its concurrent pool and its fallback instances.
type ProcessorFactory interface {
	NewProcessor(ctx context.Context) (PageProcessor, error)
}

// Extractor analyzes rendered HTML for advertising-technology integrations.
type Extractor interface {
	Extract(html string) (*PageData, error)
}

// ResultWriter persists the final aggregated result set. The engine does not
// define the persisted format; that belongs to the writer.
type ResultWriter interface {
	WriteResults(ctx context.Context, results []*TaskResult) error
}

// ErrorLogger records classified task failures as line-oriented artifacts for
// external reporting.
type ErrorLogger interface {
	LogError(result *TaskResult) error
}
