// Package urlnorm canonicalises bookmark URLs for matching and decides which
// URLs are worth probing.
package urlnorm

import (
	"net/netip"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// TrackingParams are removed by Normalize.
var TrackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"fbclid",
	"gclid",
}

// RedirectParams name the query parameters that carry the final destination
// of a login or gateway URL, in lookup order.
var RedirectParams = []string{"continue", "redirect_uri", "return_to", "returnUrl"}

// Normalize removes tracking parameters and trailing path slashes. The order
// of the remaining query parameters is kept. Unparseable input is returned
// unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Opaque != "" {
		return raw
	}

	if u.RawQuery != "" {
		u.RawQuery = stripParams(u.RawQuery)
	}
	u.ForceQuery = false

	u.Path = strings.TrimRight(u.Path, "/")
	if u.RawPath != "" {
		u.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	return u.String()
}

func stripParams(rawQuery string) string {
	pairs := strings.Split(rawQuery, "&")
	kept := pairs[:0]
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTracking(key) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

func isTracking(key string) bool {
	for _, p := range TrackingParams {
		if key == p {
			return true
		}
	}
	return false
}

// Host returns the lower-cased hostname of raw, or "" when it has none.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Domain returns the registrable domain (eTLD+1) of raw. IP literals and
// hosts without a public suffix fall back to the hostname.
func Domain(raw string) string {
	host := Host(raw)
	if host == "" {
		return ""
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// WithoutWWW drops a leading "www." from the host.
func WithoutWWW(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasPrefix(strings.ToLower(u.Host), "www.") {
		return "", false
	}
	u.Host = u.Host[len("www."):]
	return u.String(), true
}

// WithWWW prefixes the host with "www.". URLs already mentioning "www."
// anywhere are left alone.
func WithWWW(raw string) (string, bool) {
	if strings.Contains(raw, "www.") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	u.Host = "www." + u.Host
	return u.String(), true
}

// HTTPVariant rewrites an https URL to http.
func HTTPVariant(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "https://") {
		return "", false
	}
	return "http://" + strings.TrimPrefix(raw, "https://"), true
}

// HTTPSVariant rewrites an http URL to https.
func HTTPSVariant(raw string) (string, bool) {
	if !strings.HasPrefix(raw, "http://") {
		return "", false
	}
	return "https://" + strings.TrimPrefix(raw, "http://"), true
}

// RedirectTarget extracts the destination carried by a redirect parameter
// (see RedirectParams).
func RedirectTarget(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	q := u.Query()
	for _, p := range RedirectParams {
		if v := q.Get(p); v != "" {
			return v, true
		}
	}
	return "", false
}
