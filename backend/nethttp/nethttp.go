// Package nethttp is the reference backend.Session implementation,
// built over net/http. It is adapted from the archimedes-http client's
// Client/Transport wrapper: the service-mesh resolution that client
// performed in Do has been replaced with a direct dial, but the
// redirect-safe header forwarding it implemented in
// makeHeadersCopier/shouldCopyHeaderOnRedirect is carried over nearly
// verbatim, generalized to work over backend.RequestSpec instead of a
// *http.Request the caller already built.
package nethttp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bruno-anjos/httpagent/backend"
)

// Session implements backend.Session over net/http, with its own
// redirect loop so that it can collect every Set-Cookie along the
// chain and apply the cross-domain header-stripping rule at each hop.
type Session struct {
	client             *http.Client
	defaultMaxRedirect int
	insecureSkipVerify bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithInsecureSkipVerify disables TLS certificate verification. Meant
// for talking to test fixtures with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return func(s *Session) { s.insecureSkipVerify = true }
}

// WithDefaultMaxRedirects sets the redirect ceiling used when a
// request's RequestSpec.MaxRedirects is zero.
func WithDefaultMaxRedirects(n int) Option {
	return func(s *Session) { s.defaultMaxRedirect = n }
}

// New builds a Session. proxyURL, when non-empty, configures a fixed
// proxy for every request that does not itself override Proxy.
func New(proxyURL string, opts ...Option) (*Session, error) {
	s := &Session{defaultMaxRedirect: 10}
	for _, o := range opts {
		o(s)
	}

	dialer, proxyFn, err := dialerFor(proxyURL)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: proxyFn,
	}
	if s.insecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	if dialer != nil {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}

	s.client = &http.Client{
		Transport: transport,
		// Redirects are followed by Session.Do itself, so the
		// underlying client must never auto-follow.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return s, nil
}

// Close releases idle pooled connections.
func (s *Session) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Do implements backend.Session.
func (s *Session) Do(ctx context.Context, spec backend.RequestSpec) (backend.Result, error) {
	maxRedirects := spec.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = s.defaultMaxRedirect
	}

	client := s.client
	if spec.Timeout > 0 {
		// The context bounds the whole redirect chain and the body
		// read; client.Timeout alone would restart for every hop.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
		shallow := *s.client
		shallow.Timeout = spec.Timeout
		client = &shallow
	}
	if spec.Proxy != "" {
		dialer, proxyFn, err := dialerFor(spec.Proxy)
		if err != nil {
			return backend.Result{}, err
		}
		base, ok := client.Transport.(*http.Transport)
		if !ok {
			base = &http.Transport{}
		} else {
			clone := base.Clone()
			base = clone
		}
		base.Proxy = proxyFn
		if dialer != nil {
			base.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		shallow := *client
		shallow.Transport = base
		client = &shallow
	}

	var (
		allCookies []string
		initialURL *url.URL
		currentReq *http.Request
		bodyBytes  []byte
		err        error
	)

	if spec.Body != nil {
		bodyBytes, err = io.ReadAll(spec.Body)
		if err != nil {
			return backend.Result{}, fmt.Errorf("nethttp: reading request body: %w", err)
		}
	}

	currentURL := spec.URL
	method := spec.Method
	headers := cloneHeaders(spec.Headers)

	var resp *http.Response
	for hop := 0; ; hop++ {
		currentReq, err = http.NewRequestWithContext(ctx, method, currentURL, bodyReader(bodyBytes))
		if err != nil {
			return backend.Result{}, fmt.Errorf("nethttp: building request: %w", err)
		}
		for k, v := range headers {
			currentReq.Header.Set(k, v)
		}
		if spec.DisableDecompression && currentReq.Header.Get("Accept-Encoding") == "" {
			// An explicit Accept-Encoding stops the Transport from
			// requesting gzip and inflating it on its own.
			currentReq.Header.Set("Accept-Encoding", "identity")
		}

		if initialURL == nil {
			u, parseErr := url.Parse(currentURL)
			if parseErr != nil {
				return backend.Result{}, fmt.Errorf("nethttp: parsing URL: %w", parseErr)
			}
			initialURL = u
		}

		resp, err = client.Do(currentReq)
		if err != nil {
			return backend.Result{}, err
		}

		allCookies = append(allCookies, resp.Header.Values("Set-Cookie")...)

		if !isRedirect(resp.StatusCode) || spec.DisableRedirects {
			break
		}
		resp.Body.Close()

		if hop >= maxRedirects {
			return backend.Result{}, fmt.Errorf("nethttp: stopped after %d redirects", maxRedirects)
		}

		loc := resp.Header.Get("Location")
		if loc == "" {
			return backend.Result{}, fmt.Errorf("nethttp: redirect with no Location header")
		}
		destURL, parseErr := currentReq.URL.Parse(loc)
		if parseErr != nil {
			return backend.Result{}, fmt.Errorf("nethttp: parsing redirect Location: %w", parseErr)
		}

		headers = stripHeadersForRedirect(headers, initialURL, destURL)

		if resp.StatusCode == http.StatusSeeOther || ((resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusFound) && method == http.MethodPost) {
			method = http.MethodGet
			bodyBytes = nil
		}

		log.Debugf("following redirect %d -> %s", resp.StatusCode, destURL)
		currentURL = destURL.String()
	}

	defer resp.Body.Close()
	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return backend.Result{}, fmt.Errorf("nethttp: reading response body: %w", err)
	}

	if !spec.DisableDecompression {
		rawBody, err = decompress(resp.Header.Get("Content-Encoding"), rawBody)
		if err != nil {
			return backend.Result{}, fmt.Errorf("nethttp: decompressing response: %w", err)
		}
	}

	resultHeaders := make(map[string]string, len(resp.Header))
	for k, vv := range resp.Header {
		sep := ", "
		if strings.EqualFold(k, "Set-Cookie") {
			sep = "; "
		}
		resultHeaders[strings.ToLower(k)] = strings.Join(vv, sep)
	}

	return backend.Result{
		StatusCode: resp.StatusCode,
		StatusLine: fmt.Sprintf("HTTP/%d.%d %s", resp.ProtoMajor, resp.ProtoMinor, resp.Status),
		Headers:    resultHeaders,
		Body:       rawBody,
		FinalURL:   currentReq.URL.String(),
		SetCookies: allCookies,
	}, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// stripHeadersForRedirect drops Authorization/Cookie-family headers
// once the redirect target is not the same host or a subdomain of it.
func stripHeadersForRedirect(headers map[string]string, initial, dest *url.URL) map[string]string {
	out := make(map[string]string, len(headers))
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if shouldForwardHeaderOnRedirect(k, initial, dest) {
			out[k] = headers[k]
		}
	}
	return out
}

func cloneHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}
