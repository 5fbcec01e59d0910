package adscan

import "time"

// Default crawl limits.
const (
	DefaultMaxConcurrency    = 10
	DefaultNavigationTimeout = 30 * time.Second
)

// Options is the configuration surface consumed by the crawl engine.
// Supplied by the CLI loader; zero values fall back to defaults where noted.
type Options struct {
	// MaxConcurrency bounds the number of pages processed at once.
	// Defaults to DefaultMaxConcurrency when <= 0.
	MaxConcurrency int

	// Range selects a 1-based inclusive "start-end" slice of the input list.
	// Empty processes the whole list.
	Range string

	// ChunkSize splits the selected range into sequentially processed
	// sub-batches. Disabled when <= 0.
	ChunkSize int

	// SkipProcessed filters out URLs the ledger already records with a
	// terminal outcome.
	SkipProcessed bool

	// ForceReprocess bypasses the ledger filter entirely. Outcomes are still
	// recorded (upserted) so the ledger stays consistent.
	ForceReprocess bool

	// ResetTracking clears the ledger before the run. Operator-triggered.
	ResetTracking bool

	// PreflightCheck runs DNS/SSL probes before dispatch.
	PreflightCheck bool

	// SkipDNSFailed excludes URLs that failed the DNS probe.
	SkipDNSFailed bool

	// SkipSSLFailed excludes URLs that failed the SSL probe.
	SkipSSLFailed bool

	// NavigationTimeout bounds each page navigation. Defaults to
	// DefaultNavigationTimeout when zero.
	NavigationTimeout time.Duration
}

// Concurrency returns MaxConcurrency with the default applied.
func (o Options) Concurrency() int {
	if o.MaxConcurrency <= 0 {
		return DefaultMaxConcurrency
	}
	return o.MaxConcurrency
}

// NavTimeout returns NavigationTimeout with the default applied.
func (o Options) NavTimeout() time.Duration {
	if o.NavigationTimeout <= 0 {
		return DefaultNavigationTimeout
	}
	return o.NavigationTimeout
}
