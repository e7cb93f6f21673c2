package middleware

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in the order CDNs and load balancers set them.
var clientIPHeaders = []string{"CF-Connecting-IP", "True-Client-IP", "X-Forwarded-For", "X-Real-IP", "X-Client-IP"}

// ClientIP resolves the caller's address, preferring proxy headers. Header
// values that are not IP addresses are skipped.
func ClientIP(r *http.Request) string {
	for _, h := range clientIPHeaders {
		v := r.Header.Get(h)
		if h == "X-Forwarded-For" {
			v, _, _ = strings.Cut(v, ",")
		}
		if ip := normalizeIP(v); ip != "" {
			return ip
		}
	}

	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if ip := normalizeIP(addr); ip != "" {
		return ip
	}
	return "unknown"
}

// normalizeIP returns the canonical form of s, unwrapping IPv4-mapped IPv6
// addresses, or "" when s is not an IP.
func normalizeIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
