// Package bloom provides probabilistic URL deduplication for large input
// lists using Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/adscan"
)

// Filter wraps a Bloom filter for URL deduplication. URLs are normalized
// before insertion so trivially different spellings of the same address
// collapse to one entry.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Bloom filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add adds a URL to the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(adscan.NormalizeURL(url))
}

// Test returns true if the URL might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(adscan.NormalizeURL(url))
}

// EstimatedCount returns the approximate number of URLs in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Dedupe returns the URLs with duplicates removed, preserving first-seen
// order. The false positive rate means a URL can very rarely be dropped as a
// duplicate it is not; for crawl input lists that trade is acceptable and the
// rate is configured well below one in ten thousand.
func Dedupe(urls []string) []string {
	if len(urls) == 0 {
		return urls
	}
	f := NewFilter(uint(len(urls)), 0.0001)
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if f.Test(u) {
			continue
		}
		f.Add(u)
		out = append(out, u)
	}
	return out
}
