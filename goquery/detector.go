// Package goquery implements ad-tech detection over rendered HTML.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/adscan"
)

// Ensure Detector implements adscan.Extractor at compile time.
var _ adscan.Extractor = (*Detector)(nil)

// scriptVendors maps script host suffixes to ad-tech vendor identifiers.
// Matching is by host suffix so regional subdomains (e.g.
// securepubads.g.doubleclick.net) attribute to the same vendor.
var scriptVendors = []struct {
	hostSuffix string
	vendor     string
}{
	{"securepubads.g.doubleclick.net", "google_ad_manager"},
	{"doubleclick.net", "google_ad_manager"},
	{"googlesyndication.com", "google_adsense"},
	{"googletagservices.com", "google_ad_manager"},
	{"adsystem.amazon.com", "amazon_publisher_services"},
	{"amazon-adsystem.com", "amazon_publisher_services"},
	{"criteo.com", "criteo"},
	{"criteo.net", "criteo"},
	{"taboola.com", "taboola"},
	{"outbrain.com", "outbrain"},
	{"pubmatic.com", "pubmatic"},
	{"rubiconproject.com", "magnite"},
	{"openx.net", "openx"},
	{"indexww.com", "index_exchange"},
	{"adnxs.com", "xandr"},
	{"id5-sync.com", "id5"},
	{"prebid.org", "prebid"},
}

// scriptPathMarkers catches vendor libraries served from first-party or CDN
// paths where the host alone is not indicative.
var scriptPathMarkers = []struct {
	marker string
	vendor string
}{
	{"gpt.js", "google_ad_manager"},
	{"adsbygoogle.js", "google_adsense"},
	{"prebid", "prebid"},
	{"apstag.js", "amazon_publisher_services"},
}

// inlineMarkers identifies ad-tech globals referenced from inline scripts.
var inlineMarkers = []struct {
	marker string
	vendor string
}{
	{"googletag.cmd", "google_ad_manager"},
	{"window.googletag", "google_ad_manager"},
	{"pbjs.que", "prebid"},
	{"window.pbjs", "prebid"},
	{"apstag.init", "amazon_publisher_services"},
	{"__tcfapi", "iab_tcf"},
	{"adsbygoogle", "google_adsense"},
}

// Detector extracts advertising-technology integrations from rendered HTML.
// It inspects external script sources, inline script bodies, and ad iframes.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Extract parses the HTML and returns the page title plus every detected
// integration, deduplicated by vendor and kind. A page with no detections
// yields a PageData with an empty Detections slice, not an error.
func (d *Detector) Extract(html string) (*adscan.PageData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, adscan.Errorf(adscan.EINVALID, "parsing html: %v", err)
	}

	data := &adscan.PageData{
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Detections: []adscan.Detection{},
	}

	seen := make(map[string]bool)
	add := func(det adscan.Detection) {
		key := det.Vendor + "|" + det.Kind
		if seen[key] {
			return
		}
		seen[key] = true
		data.Detections = append(data.Detections, det)
	}

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if vendor := classifyScriptSrc(src); vendor != "" {
			add(adscan.Detection{Vendor: vendor, Kind: "script", Evidence: src})
		}
	})

	doc.Find("script:not([src])").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		for _, m := range inlineMarkers {
			if strings.Contains(body, m.marker) {
				add(adscan.Detection{Vendor: m.vendor, Kind: "inline", Evidence: m.marker})
			}
		}
	})

	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if vendor := classifyScriptSrc(src); vendor != "" {
			add(adscan.Detection{Vendor: vendor, Kind: "iframe", Evidence: src})
		}
	})

	return data, nil
}

// classifyScriptSrc attributes a script or iframe source URL to an ad-tech
// vendor, or returns "" when the source is not recognized.
func classifyScriptSrc(src string) string {
	if src == "" {
		return ""
	}

	// Protocol-relative sources are common in ad tags.
	parseable := src
	if strings.HasPrefix(parseable, "//") {
		parseable = "https:" + parseable
	}

	if u, err := url.Parse(parseable); err == nil && u.Host != "" {
		host := strings.ToLower(u.Hostname())
		for _, sv := range scriptVendors {
			if host == sv.hostSuffix || strings.HasSuffix(host, "."+sv.hostSuffix) {
				return sv.vendor
			}
		}
	}

	lower := strings.ToLower(src)
	for _, pm := range scriptPathMarkers {
		if strings.Contains(lower, pm.marker) {
			return pm.vendor
		}
	}
	return ""
}
