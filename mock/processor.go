// Package mock provides function-field mock implementations of adscan
// interfaces for testing.
package mock

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.PageProcessor = (*PageProcessor)(nil)

// PageProcessor is a mock implementation of adscan.PageProcessor.
type PageProcessor struct {
	ProcessFn func(ctx context.Context, url string) (*adscan.TaskResult, error)
	CloseFn   func() error
}

func (p *PageProcessor) Process(ctx context.Context, url string) (*adscan.TaskResult, error) {
	return p.ProcessFn(ctx, url)
}

func (p *PageProcessor) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}

var _ adscan.ProcessorFactory = (*ProcessorFactory)(nil)

// ProcessorFactory is a mock implementation of adscan.ProcessorFactory.
type ProcessorFactory struct {
	NewProcessorFn func(ctx context.Context) (adscan.PageProcessor, error)
}

func (f *ProcessorFactory) NewProcessor(ctx context.Context) (adscan.PageProcessor, error) {
	return f.NewProcessorFn(ctx)
}
