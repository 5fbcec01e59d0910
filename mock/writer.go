package mock

import (
	"context"

	"github.com/fwojciec/adscan"
)

var _ adscan.ResultWriter = (*ResultWriter)(nil)

// ResultWriter is a mock implementation of adscan.ResultWriter.
type ResultWriter struct {
	WriteResultsFn func(ctx context.Context, results []*adscan.TaskResult) error
}

func (w *ResultWriter) WriteResults(ctx context.Context, results []*adscan.TaskResult) error {
	if w.WriteResultsFn == nil {
		return nil
	}
	return w.WriteResultsFn(ctx, results)
}

var _ adscan.ErrorLogger = (*ErrorLogger)(nil)

// ErrorLogger is a mock implementation of adscan.ErrorLogger.
type ErrorLogger struct {
	LogErrorFn func(result *adscan.TaskResult) error
}

func (l *ErrorLogger) LogError(result *adscan.TaskResult) error {
	if l.LogErrorFn == nil {
		return nil
	}
	return l.LogErrorFn(result)
}

var _ adscan.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of adscan.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*adscan.PageData, error)
}

func (e *Extractor) Extract(html string) (*adscan.PageData, error) {
	return e.ExtractFn(html)
}

var _ adscan.ContentCache = (*ContentCache)(nil)

// ContentCache is a mock implementation of adscan.ContentCache.
type ContentCache struct {
	GetFn   func(key string) ([]byte, bool)
	SetFn   func(key string, value []byte)
	StatsFn func() adscan.CacheStats
}

func (c *ContentCache) Get(key string) ([]byte, bool) {
	if c.GetFn == nil {
		return nil, false
	}
	return c.GetFn(key)
}

func (c *ContentCache) Set(key string, value []byte) {
	if c.SetFn != nil {
		c.SetFn(key, value)
	}
}

func (c *ContentCache) Stats() adscan.CacheStats {
	if c.StatsFn == nil {
		return adscan.CacheStats{}
	}
	return c.StatsFn()
}
