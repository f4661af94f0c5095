// Package embedguard decides, once per page load, whether an embedding page
// is allowed to render the tool, based on the tenant's domain whitelist and
// the request's referrer.
//
// A missing or malformed referrer renders (fails open) on purpose: privacy
// extensions and some in-app browsers strip the header, and blocking those
// visitors was judged worse than the spoofing window it leaves. Only a
// present, mismatched referrer blocks.
package embedguard

import (
	"net/url"
	"strings"

	"stairviz/internal/domain"
)

// legacyDomain is a historical customer embed kept working by hand.
const legacyDomain = "stairrenew.net"

// Guard evaluates embed origins against tenant whitelists.
type Guard struct {
	productDomain string
}

// New constructs a Guard. productDomain is always allowed alongside
// localhost and the tenant whitelist.
func New(productDomain string) *Guard {
	return &Guard{productDomain: normalizeEntry(productDomain)}
}

// Decide returns the origin verdict for a referrer and whitelist. The
// referrer may be a full URL or a bare host.
func (g *Guard) Decide(referer string, whitelist []string) domain.OriginDecision {
	referer = strings.TrimSpace(referer)
	if referer == "" {
		return domain.OriginDecision{Allowed: true}
	}

	origin := normalizeReferer(referer)
	if origin == "" {
		// Unparseable referrer, fail open.
		return domain.OriginDecision{Allowed: true, Origin: referer}
	}

	if origin == "localhost" || strings.HasPrefix(origin, "localhost:") {
		return domain.OriginDecision{Allowed: true, Origin: origin, Matched: "localhost"}
	}
	if g.productDomain != "" && hostMatches(origin, g.productDomain) {
		return domain.OriginDecision{Allowed: true, Origin: origin, Matched: g.productDomain}
	}
	if hostMatches(origin, legacyDomain) {
		return domain.OriginDecision{Allowed: true, Origin: origin, Matched: legacyDomain}
	}

	for _, raw := range whitelist {
		entry := normalizeEntry(raw)
		if entry == "" {
			continue
		}
		if hostMatches(origin, entry) {
			return domain.OriginDecision{Allowed: true, Origin: origin, Matched: entry}
		}
	}

	return domain.OriginDecision{Allowed: false, Origin: origin}
}

// hostMatches reports whether host is entry itself or a subdomain of it.
func hostMatches(host, entry string) bool {
	return host == entry || strings.HasSuffix(host, "."+entry)
}

// normalizeReferer reduces a referrer URL to a comparable host.
func normalizeReferer(referer string) string {
	if !strings.Contains(referer, "://") {
		referer = "https://" + referer
	}
	u, err := url.Parse(referer)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	if u.Port() != "" && strings.EqualFold(host, "localhost") {
		host = host + ":" + u.Port()
	}
	return normalizeEntry(host)
}

// normalizeEntry lower-cases a configured domain and strips protocol, www.
// and trailing slashes so dashboard input in any of the usual shapes still
// compares equal.
func normalizeEntry(entry string) string {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if i := strings.Index(entry, "://"); i >= 0 {
		entry = entry[i+3:]
	}
	entry = strings.TrimPrefix(entry, "www.")
	entry = strings.TrimRight(entry, "/")
	if i := strings.IndexByte(entry, '/'); i >= 0 {
		entry = entry[:i]
	}
	return entry
}
