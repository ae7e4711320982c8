package nethttp

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/docker/go-connections/nat"
	"golang.org/x/net/proxy"
)

// dialerFor builds the net.Dialer (or SOCKS proxy.Dialer) a Transport
// should use for proxyURL, and — for a plain http(s):// proxy — the
// http.Transport.Proxy function to install instead.
//
// SOCKS proxies go through golang.org/x/net/proxy, since net/http's
// Transport only speaks CONNECT-tunneled http(s) proxies natively.
// proxy.FromURL only builds socks5/socks5h dialers, so a socks4 or
// socks4a URL is rejected here with an error.
func dialerFor(proxyURL string) (proxy.Dialer, func(*http.Request) (*url.URL, error), error) {
	if proxyURL == "" {
		return nil, http.ProxyFromEnvironment, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, nil, fmt.Errorf("nethttp: invalid proxy URL %q: %w", proxyURL, err)
	}

	if err := validateProxyAddress(u.Host); err != nil {
		return nil, nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil, http.ProxyURL(u), nil
	case "socks4", "socks4a", "socks5", "socks5h":
		d, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, nil, fmt.Errorf("nethttp: building socks dialer: %w", err)
		}
		return d, nil, nil
	default:
		return nil, nil, fmt.Errorf("nethttp: unsupported proxy scheme %q", u.Scheme)
	}
}

// validateProxyAddress checks that hostPort carries a well-formed,
// recognized port, the way nat.Port validation is used elsewhere in
// the archimedes stack to validate service ports before dialing.
func validateProxyAddress(hostPort string) error {
	_, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("nethttp: proxy address %q missing port: %w", hostPort, err)
	}
	if _, err := nat.NewPort(nat.SplitProtoPort(port + "/tcp")); err != nil {
		return fmt.Errorf("nethttp: proxy address %q has an invalid port: %w", hostPort, err)
	}
	return nil
}
