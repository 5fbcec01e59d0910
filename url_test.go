package adscan_test

import (
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "https://example.com/page", "https://example.com/page"},
		{"adds https scheme", "example.com/page", "https://example.com/page"},
		{"lowercases host", "https://Example.COM/Page", "https://example.com/Page"},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strips default https port", "https://example.com:443/page", "https://example.com/page"},
		{"strips default http port", "http://example.com:80/page", "http://example.com/page"},
		{"keeps custom port", "https://example.com:8443/page", "https://example.com:8443/page"},
		{"strips root path", "https://example.com/", "https://example.com"},
		{"trims whitespace", "  https://example.com/page  ", "https://example.com/page"},
		{"empty input", "", ""},
		{"preserves query", "https://example.com/page?a=1", "https://example.com/page?a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, adscan.NormalizeURL(tt.in))
		})
	}
}

func TestNormalizeURL_same_address_same_key(t *testing.T) {
	t.Parallel()

	spellings := []string{
		"https://Example.com:443/page#top",
		"https://example.com/page",
		"example.com/page",
	}

	first := adscan.NormalizeURL(spellings[0])
	for _, s := range spellings[1:] {
		assert.Equal(t, first, adscan.NormalizeURL(s))
	}
}

func TestHost(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com", adscan.Host("https://Example.com:8443/page"))
	assert.Equal(t, "example.com", adscan.Host("example.com/page"))
	assert.Equal(t, "", adscan.Host("https://\x00bad"))
}
