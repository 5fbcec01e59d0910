package crawl

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/adscan"
	"golang.org/x/sync/errgroup"
)

// Default probe limits. DNS probes are far cheaper than TLS handshakes, so
// the two run at independent concurrency.
const (
	DefaultDNSConcurrency = 50
	DefaultSSLConcurrency = 10
	defaultProbeTimeout   = 10 * time.Second
)

// probeFunc performs a single probe against a host.
type probeFunc func(ctx context.Context, host string) error

// PreflightChecker runs cheap upfront DNS and TLS probes so deterministically
// unreachable URLs never pay the much higher cost of browser navigation.
// Probe failures never raise; they are recorded in the per-URL result and
// fed to the domain health tracker.
type PreflightChecker struct {
	health adscan.HealthTracker
	logger *slog.Logger

	dnsProbe     probeFunc
	sslProbe     probeFunc
	probeTimeout time.Duration
	retry        Policy
}

// PreflightOption configures a PreflightChecker.
type PreflightOption func(*PreflightChecker)

// WithHealth attaches a domain health tracker. Probe outcomes update it, and
// blocked domains are skipped without probing.
func WithHealth(h adscan.HealthTracker) PreflightOption {
	return func(c *PreflightChecker) { c.health = h }
}

// WithProbes replaces the DNS and SSL probe implementations. Used in tests.
func WithProbes(dns, ssl probeFunc) PreflightOption {
	return func(c *PreflightChecker) {
		c.dnsProbe = dns
		c.sslProbe = ssl
	}
}

// WithProbeTimeout bounds each individual probe.
func WithProbeTimeout(d time.Duration) PreflightOption {
	return func(c *PreflightChecker) { c.probeTimeout = d }
}

// WithRetryPolicy replaces the probe retry policy. Defaults to
// DefaultPolicy, which retries only transient failures.
func WithRetryPolicy(p Policy) PreflightOption {
	return func(c *PreflightChecker) { c.retry = p }
}

// NewPreflightChecker creates a PreflightChecker with real network probes.
func NewPreflightChecker(logger *slog.Logger, opts ...PreflightOption) *PreflightChecker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &PreflightChecker{
		logger:       logger,
		probeTimeout: defaultProbeTimeout,
		retry:        DefaultPolicy(),
	}
	c.dnsProbe = c.resolveDNS
	c.sslProbe = c.handshakeTLS
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckURLs probes urls at bounded concurrency and returns a result per URL.
// DNS probes run first; SSL probes run only for https URLs that resolved,
// since a handshake against an unresolvable host cannot succeed.
func (c *PreflightChecker) CheckURLs(ctx context.Context, urls []string, opts adscan.PreflightOptions) map[string]adscan.PreflightResult {
	results := make(map[string]adscan.PreflightResult, len(urls))
	var mu sync.Mutex

	for _, u := range urls {
		results[u] = adscan.PreflightResult{URL: u, PassedDNS: true, PassedSSL: true}
	}

	if opts.CheckHealth && c.health != nil {
		for _, u := range urls {
			if c.health.ShouldSkip(u) {
				r := results[u]
				r.Blocked = true
				r.PassedDNS = false
				r.PassedSSL = false
				r.SkipReason = "domain circuit blocked, cooling down"
				results[u] = r
			}
		}
	}

	if opts.CheckDNS {
		c.runProbes(ctx, urls, results, &mu, c.dnsProbe, dnsConcurrency(opts), func(r *adscan.PreflightResult, err error) {
			r.PassedDNS = false
			r.SkipReason = fmt.Sprintf("DNS resolution failed: %v", err)
		})
	}

	if opts.CheckSSL {
		var sslURLs []string
		for _, u := range urls {
			r := results[u]
			if !r.PassedDNS || r.SkipReason != "" {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(u), "https://") && strings.Contains(u, "://") {
				r.Warnings = append(r.Warnings, "not https, SSL probe skipped")
				results[u] = r
				continue
			}
			sslURLs = append(sslURLs, u)
		}
		c.runProbes(ctx, sslURLs, results, &mu, c.sslProbe, sslConcurrency(opts), func(r *adscan.PreflightResult, err error) {
			r.PassedSSL = false
			r.SkipReason = fmt.Sprintf("SSL handshake failed: %v", err)
		})
	}

	return results
}

// runProbes executes probe for every URL at the given concurrency and applies
// onFailure to the result of each failed probe.
func (c *PreflightChecker) runProbes(
	ctx context.Context,
	urls []string,
	results map[string]adscan.PreflightResult,
	mu *sync.Mutex,
	probe probeFunc,
	concurrency int,
	onFailure func(*adscan.PreflightResult, error),
) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, u := range urls {
		mu.Lock()
		skip := results[u].SkipReason != ""
		mu.Unlock()
		if skip {
			continue
		}

		g.Go(func() error {
			host := adscan.Host(u)
			if host == "" {
				mu.Lock()
				r := results[u]
				onFailure(&r, fmt.Errorf("unparseable URL"))
				results[u] = r
				mu.Unlock()
				return nil
			}

			// Transient probe failures get a bounded retry; permanent ones
			// (NXDOMAIN, broken certificates) fail on the first attempt.
			err := c.retry.Do(gctx, func(ctx context.Context) error {
				probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
				defer cancel()
				return probe(probeCtx, host)
			})

			if err != nil {
				mu.Lock()
				r := results[u]
				onFailure(&r, err)
				results[u] = r
				mu.Unlock()
				if c.health != nil {
					c.health.RecordFailure(u, adscan.ClassifyError(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// resolveDNS checks that the host resolves to at least one address.
func (c *PreflightChecker) resolveDNS(ctx context.Context, host string) error {
	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return fmt.Errorf("no addresses for %s", host)
	}
	return nil
}

// handshakeTLS performs a TLS handshake against host:443 with certificate
// verification enabled.
func (c *PreflightChecker) handshakeTLS(ctx context.Context, host string) error {
	dialer := &tls.Dialer{
		Config: &tls.Config{ServerName: host},
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "443"))
	if err != nil {
		return err
	}
	return conn.Close()
}

func dnsConcurrency(opts adscan.PreflightOptions) int {
	if opts.DNSConcurrency > 0 {
		return opts.DNSConcurrency
	}
	return DefaultDNSConcurrency
}

func sslConcurrency(opts adscan.PreflightOptions) int {
	if opts.SSLConcurrency > 0 {
		return opts.SSLConcurrency
	}
	return DefaultSSLConcurrency
}
