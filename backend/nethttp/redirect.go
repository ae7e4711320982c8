package nethttp

import (
	"net/url"
	"strings"
)

// shouldForwardHeaderOnRedirect decides whether a header set explicitly
// on the original request should still be sent after a cross-host
// redirect. Sensitive headers ("Authorization", "Www-Authenticate",
// "Cookie", "Cookie2") are only forwarded to the same host or a
// subdomain of it; everything else is always forwarded.
//
// Adapted from the archimedes-http client's shouldCopyHeaderOnRedirect.
func shouldForwardHeaderOnRedirect(headerKey string, initial, dest *url.URL) bool {
	switch strings.ToLower(headerKey) {
	case "authorization", "www-authenticate", "cookie", "cookie2":
		return isDomainOrSubdomain(dest.Hostname(), initial.Hostname())
	}
	return true
}

// isDomainOrSubdomain reports whether sub is a subdomain or an exact
// match of parent. Both must already be bare hostnames (no port).
func isDomainOrSubdomain(sub, parent string) bool {
	if sub == parent {
		return true
	}
	if !strings.HasSuffix(sub, parent) {
		return false
	}
	return sub[len(sub)-len(parent)-1] == '.'
}
