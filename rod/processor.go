package rod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Processor implements adscan.PageProcessor at compile time.
var _ adscan.PageProcessor = (*Processor)(nil)

// Processor runs the page task through a managed Chrome browser: navigate,
// wait for rendering, extract ad-tech integrations. Each task gets its own
// page, so a Processor is safe for concurrent use by multiple goroutines.
//
// Per-task failures (unresolvable hosts, timeouts, broken certificates,
// detached frames) are classified into error results. Only a broken driver
// (the browser connection itself) surfaces as a non-nil error.
type Processor struct {
	manager     *BrowserManager
	extractor   adscan.Extractor
	cache       adscan.ContentCache
	managerOpts []ManagerOption
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCache gives the processor a content cache to consult before
// navigating. A hit skips the browser entirely and re-extracts from the
// cached HTML.
func WithCache(c adscan.ContentCache) ProcessorOption {
	return func(p *Processor) {
		p.cache = c
	}
}

// WithManagerOptions forwards options to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) ProcessorOption {
	return func(p *Processor) {
		p.managerOpts = append(p.managerOpts, opts...)
	}
}

// NewProcessor creates a Processor backed by a fresh managed browser.
// Close must be called when the Processor is no longer needed.
func NewProcessor(extractor adscan.Extractor, opts ...ProcessorOption) (*Processor, error) {
	p := &Processor{extractor: extractor}
	for _, opt := range opts {
		opt(p)
	}
	bm, err := NewBrowserManager(p.managerOpts...)
	if err != nil {
		return nil, err
	}
	p.manager = bm
	return p, nil
}

// Process navigates to the URL, waits for the page to load, and extracts
// ad-tech integrations from the rendered HTML. It returns exactly one result
// per call unless the driver itself has failed.
func (p *Processor) Process(ctx context.Context, url string) (*adscan.TaskResult, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.cache != nil {
		if html, ok := p.cache.Get(url); ok {
			return p.extract(url, string(html), start), nil
		}
	}

	html, err := p.fetch(ctx, url)
	if err != nil {
		// A dead driver is not a property of this URL: surfacing it as an
		// error hands the remaining batch to the next execution strategy.
		var dErr *driverError
		if errors.As(err, &dErr) {
			return nil, err
		}
		// Parent cancellation is not a property of this URL either.
		if ctx.Err() != nil && !isDeadline(ctx) {
			return nil, ctx.Err()
		}
		return adscan.ErrorResult(url, adscan.ClassifyError(err), time.Since(start)), nil
	}

	if p.cache != nil {
		p.cache.Set(url, []byte(html))
	}
	return p.extract(url, html, start), nil
}

// driverError marks a failure of the browser connection itself, as opposed
// to a failure of the page being processed.
type driverError struct {
	err error
}

func (e *driverError) Error() string { return e.err.Error() }
func (e *driverError) Unwrap() error { return e.err }

// fetch renders the URL in a fresh page bounded by ctx and returns its HTML.
// Failures before a page exists are driver errors; everything after is a
// property of the URL.
func (p *Processor) fetch(ctx context.Context, url string) (string, error) {
	browser := p.manager.Browser()
	if browser == nil {
		return "", &driverError{fmt.Errorf("browser unavailable")}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		// Page creation failing means the browser connection is gone.
		return "", &driverError{fmt.Errorf("creating page: %w", err)}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	p.manager.IncrementPageCount()
	return html, nil
}

// extract runs ad-tech detection over rendered HTML and shapes the outcome:
// detections found is a success, a clean page is no-data, a parse failure is
// an extraction error.
func (p *Processor) extract(url, html string, start time.Time) *adscan.TaskResult {
	data, err := p.extractor.Extract(html)
	if err != nil {
		return adscan.ErrorResult(url, adscan.ClassifyError(err), time.Since(start))
	}
	if len(data.Detections) == 0 {
		return adscan.NoDataResult(url, time.Since(start))
	}
	data.URL = url
	return adscan.SuccessResult(url, data, time.Since(start))
}

// Close releases browser resources.
func (p *Processor) Close() error {
	return p.manager.Close()
}

// isDeadline reports whether the context ended by deadline rather than
// cancellation. A per-task deadline classifies as a timeout result; a
// canceled parent means the whole run is shutting down.
func isDeadline(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
