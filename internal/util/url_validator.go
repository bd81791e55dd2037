package util

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// URLValidationError represents a URL validation failure
type URLValidationError struct {
	URL    string
	Reason string
}

func (e *URLValidationError) Error() string {
	return fmt.Sprintf("invalid URL %q: %s", e.URL, e.Reason)
}

// reservedPrefixes are IPv4 ranges that net.IP helpers do not flag but that
// never belong to a public API.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("224.0.0.0/4"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

// ParseRequestURL parses an absolute http(s) URL with a host.
// Anything else cannot be sent and is rejected before a request is built.
func ParseRequestURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &URLValidationError{URL: rawURL, Reason: "URL cannot be empty"}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &URLValidationError{URL: rawURL, Reason: fmt.Sprintf("invalid URL syntax: %v", err)}
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, &URLValidationError{
			URL:    rawURL,
			Reason: fmt.Sprintf("unsupported scheme %q (only http and https allowed)", parsed.Scheme),
		}
	}

	if parsed.Hostname() == "" {
		return nil, &URLValidationError{URL: rawURL, Reason: "missing host"}
	}

	return parsed, nil
}

// ValidateBaseURL validates the base URL a suite runs against.
// Private, loopback and reserved addresses are refused unless allowPrivateIPs
// is set, which is what local fixture servers need.
func ValidateBaseURL(rawURL string, allowPrivateIPs bool) error {
	parsed, err := ParseRequestURL(rawURL)
	if err != nil {
		return err
	}

	if allowPrivateIPs {
		return nil
	}

	if reason := privateHostReason(parsed.Hostname()); reason != "" {
		return &URLValidationError{URL: rawURL, Reason: reason}
	}

	return nil
}

// privateHostReason returns why a host is refused, or "" when it is public.
func privateHostReason(hostname string) string {
	lower := strings.ToLower(hostname)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return "localhost is blocked (use --allow-private-ips for local targets)"
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		if isPrivateAddr(addr) {
			return fmt.Sprintf("private IP %s is blocked (use --allow-private-ips for local targets)", addr)
		}
		return ""
	}

	// Unresolvable hosts pass here; the request itself reports the failure.
	ips, _ := net.LookupIP(hostname)
	for _, ip := range ips {
		if addr, ok := netip.AddrFromSlice(ip); ok && isPrivateAddr(addr.Unmap()) {
			return fmt.Sprintf("hostname %s resolves to private IP %s (use --allow-private-ips for local targets)", hostname, addr)
		}
	}

	return ""
}

func isPrivateAddr(addr netip.Addr) bool {
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}

	if addr.Is4() {
		for _, prefix := range reservedPrefixes {
			if prefix.Contains(addr) {
				return true
			}
		}
	}

	return false
}
