package urlnorm

import (
	"net/netip"
	"net/url"
	"strings"
)

// Probeable reports whether raw should be sent to the network: http(s)
// only, and never local, private-network or excluded hosts.
func Probeable(raw string, excludeDomains []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") {
		return false
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() {
			return false
		}
	}
	return !MatchesDomain(host, excludeDomains)
}

// MatchesDomain reports whether host equals one of domains or is a
// subdomain of one.
func MatchesDomain(host string, domains []string) bool {
	host = strings.ToLower(host)
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
