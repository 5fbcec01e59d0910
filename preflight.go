package adscan

// PreflightResult is the outcome of cheap upfront probes for a single URL.
// Ephemeral: created per preflight pass and consumed immediately by the
// range/chunk filter, never persisted.
type PreflightResult struct {
	URL       string
	PassedDNS bool
	PassedSSL bool

	// Blocked means the URL was excluded by its domain's circuit breaker
	// before any probe ran; PassedDNS/PassedSSL say nothing about the
	// network in that case.
	Blocked bool

	Warnings   []string
	SkipReason string
}

// Reachable reports whether the URL passed every probe that ran.
func (r PreflightResult) Reachable() bool {
	return r.PassedDNS && r.PassedSSL
}

// PreflightOptions configures which probes run and at what concurrency.
// DNS probes are far cheaper than TLS handshakes, so the two have
// independent limits.
type PreflightOptions struct {
	CheckDNS       bool
	CheckSSL       bool
	CheckHealth    bool
	DNSConcurrency int
	SSLConcurrency int
}
