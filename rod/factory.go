package rod

import (
	"context"

	"github.com/fwojciec/adscan"
)

// Ensure Factory implements adscan.ProcessorFactory at compile time.
var _ adscan.ProcessorFactory = (*Factory)(nil)

// Factory builds browser-backed processors for the execution dispatcher.
// Every processor owns its own browser, so the dispatcher's pooled fallback
// strategy gets genuinely independent instances.
type Factory struct {
	extractor adscan.Extractor
	opts      []ProcessorOption
}

// NewFactory creates a Factory. The options are applied to every processor
// it builds.
func NewFactory(extractor adscan.Extractor, opts ...ProcessorOption) *Factory {
	return &Factory{extractor: extractor, opts: opts}
}

// NewProcessor launches a fresh browser-backed processor.
func (f *Factory) NewProcessor(ctx context.Context) (adscan.PageProcessor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewProcessor(f.extractor, f.opts...)
}
