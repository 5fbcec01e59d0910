package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
)

// Ensure LoggingProcessor implements adscan.PageProcessor.
var _ adscan.PageProcessor = (*LoggingProcessor)(nil)

// LoggingProcessor wraps a PageProcessor with debug logging.
type LoggingProcessor struct {
	next   adscan.PageProcessor
	logger *slog.Logger
}

// NewLoggingProcessor creates a new LoggingProcessor.
func NewLoggingProcessor(next adscan.PageProcessor, logger *slog.Logger) *LoggingProcessor {
	return &LoggingProcessor{next: next, logger: logger}
}

// Process logs the outcome of each page task and delegates to the wrapped
// processor.
func (p *LoggingProcessor) Process(ctx context.Context, url string) (res *adscan.TaskResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs, "status", res.Status)
			if res.Data != nil {
				attrs = append(attrs, "detections", len(res.Data.Detections))
			}
			if res.Err != nil {
				attrs = append(attrs, "code", res.Err.Code)
			}
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		p.logger.Info("process", attrs...)
	}(time.Now())
	return p.next.Process(ctx, url)
}

// Close delegates to the wrapped processor.
func (p *LoggingProcessor) Close() error {
	return p.next.Close()
}
