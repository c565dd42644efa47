package crawl

import (
	"net/url"
	"strconv"
)

// Scheme is the consensus-peer URI scheme ParsePeerURI/BuildPeerURI
// require. Earlier revisions of the source this crawler is modeled on
// disagreed between "mcp://" and "mc://" in different files; it
// defaults to "mc" and is a package variable (not a constant) so a
// crawl's configured scheme can be applied once at startup, before any
// PeerURI is parsed or built.
var Scheme = "mc"

// ParsePeerURI validates raw as a PeerURI of the form scheme://host:port.
// ok is false for any malformed input (bad scheme, missing host, missing
// or out-of-range port) — a rejected URI must never enter the crawl's
// to_crawl set. host/port are always populated on a best-effort basis
// (falling back to the IPv4 sentinel 0.0.0.0:0 when either the domain or
// the port cannot be recovered from raw) regardless of ok, since downstream
// GeoIP lookups on an unresolved node should see empty strings rather
// than the crawler's own location.
func ParsePeerURI(raw string) (host string, port uint16, ok bool) {
	u, err := url.Parse(raw)
	host, port = resolveFallback(u, err)
	if err != nil {
		return host, port, false
	}
	if u.Scheme != Scheme {
		return host, port, false
	}
	h := u.Hostname()
	if h == "" {
		return host, port, false
	}
	portStr := u.Port()
	if portStr == "" {
		return host, port, false
	}
	p, perr := strconv.ParseUint(portStr, 10, 16)
	if perr != nil || p < 1 {
		return host, port, false
	}
	return h, uint16(p), true
}

// resolveFallback recovers a best-effort (host, port) pair from a parsed
// URL, falling back to 0.0.0.0:0 when either half is missing — mirrors
// the degenerate address resolution the original crawler performed
// whenever a candidate string lacked a resolvable domain or an explicit
// port.
func resolveFallback(u *url.URL, err error) (string, uint16) {
	if err != nil || u == nil {
		return "0.0.0.0", 0
	}
	h := u.Hostname()
	portStr := u.Port()
	if h == "" || portStr == "" {
		return "0.0.0.0", 0
	}
	p, perr := strconv.ParseUint(portStr, 10, 16)
	if perr != nil {
		return "0.0.0.0", 0
	}
	return h, uint16(p)
}

// BuildPeerURI constructs the PeerURI a responder ID (shaped "host:port")
// is addressed by.
func BuildPeerURI(responderID string) string {
	return Scheme + "://" + responderID
}
