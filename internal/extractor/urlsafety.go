package extractor

import (
	"net"
	"net/url"
	"strings"
)

// isHTTPScheme reports whether u uses http or https, adapted from the
// teacher's fetch.isHTTPScheme / robots.isHTTPScheme helpers.
func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isLocalOrPrivateHost reports whether host is loopback, RFC1918/link-local,
// or a *.local/localhost name, adapted from the teacher's
// robots.isLocalOrPrivateHost.
func isLocalOrPrivateHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
	if h == "localhost" || h == "localhost.localdomain" || h == "::1" {
		return true
	}
	if strings.HasSuffix(h, ".local") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return true
		}
	}
	return false
}

// isSafeURL applies the extractor's URL-safety gate (§4.3.1): only http(s)
// schemes, and no localhost/private/link-local hosts, unless
// allowPrivateHosts is set (for tests against an httptest loopback server),
// mirroring the teacher's robots.Manager.AllowPrivateHosts escape hatch.
func isSafeURL(raw string, allowPrivateHosts bool) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, false
	}
	if !isHTTPScheme(u) {
		return nil, false
	}
	if !allowPrivateHosts && isLocalOrPrivateHost(u.Hostname()) {
		return nil, false
	}
	return u, true
}
