package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseHostNoPort strips an optional port and IPv6 brackets:
// "10.0.0.1:80", "[::1]:80", "[::1]" and "host" all work.
func ParseHostNoPort(s string) string {
	if s == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
}

// LastForwardedFor returns the right-most X-Forwarded-For entry that parses
// as an IP. That entry was appended by the proxy directly in front of us;
// everything to its left was supplied by the client.
func LastForwardedFor(xff string) (netip.Addr, bool) {
	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		if addr, ok := parseAddr(hops[i]); ok {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

// ClientIP resolves the client address. Without trustProxy only RemoteAddr
// counts. With it, the right-most X-Forwarded-For hop wins, then X-Real-IP,
// then RemoteAddr. CF-Connecting-IP is never read: a client can send it
// unless Cloudflare is guaranteed to sit in front.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if addr, ok := LastForwardedFor(strings.Join(r.Header.Values("X-Forwarded-For"), ",")); ok {
			return addr.String()
		}
		if addr, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
			return addr.String()
		}
	}
	if addr, ok := parseAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return ParseHostNoPort(r.RemoteAddr)
}

func parseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(ParseHostNoPort(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// IPMatcher holds the operator allow-list. Bare addresses are stored as
// single-host prefixes; unparsable entries are dropped.
type IPMatcher struct {
	prefixes []netip.Prefix
}

func NewIPMatcher(list []string) *IPMatcher {
	m := &IPMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
		} else if addr, ok := parseAddr(s); ok {
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return m
}

func (m *IPMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Allow reports whether ip falls in any prefix. IPv4-mapped IPv6 addresses
// match their IPv4 prefixes.
func (m *IPMatcher) Allow(ip string) bool {
	addr, ok := parseAddr(ip)
	if !ok {
		return false
	}
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
