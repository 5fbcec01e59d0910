package adscan

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a raw URL for use as a ledger key. It lowercases
// the scheme and host, strips fragments and default ports, and assumes https
// when no scheme is present. Input that fails to parse is returned trimmed,
// so a malformed URL still keys consistently.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}

	if u.Path == "/" {
		u.Path = ""
	}

	return u.String()
}

// Host returns the lowercased host of a URL, or an empty string if the URL
// cannot be parsed.
func Host(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
