// Package backend declares the capability contract a transport must
// satisfy to back the terse and agent pipelines: send one request,
// return the raw status/headers/body plus enough information for the
// cookie subsystem and redirect handling to do their work. The
// reference implementation is backend/nethttp, built over net/http.
package backend

import (
	"context"
	"io"
	"time"
)

// RequestSpec is everything a Session needs to perform one request. It
// carries the already-composed Cookie header (the caller — terse or
// agent — owns cookie-jar lookups) rather than a cookiejar.Store
// reference, keeping this package free of a dependency on cookiejar.
type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    io.Reader

	// Timeout, when non-zero, bounds the whole request including
	// connection setup, any redirects followed internally, and
	// reading the response body.
	Timeout time.Duration

	// Proxy, when non-empty, is a proxy URL (http://, https://,
	// socks5://, socks5h://) that overrides the session's default
	// proxy policy for this one request.
	Proxy string

	// MaxRedirects bounds the number of redirects the Session follows
	// before giving up. Zero means "use the Session's default".
	MaxRedirects int

	// DisableRedirects, when true, returns the first response as-is —
	// including a 3xx status — instead of following its Location.
	DisableRedirects bool

	// DisableDecompression, when true, leaves a compressed response
	// body untouched instead of transparently inflating it.
	DisableDecompression bool
}

// Result is the raw outcome of one request: a status line, the merged
// response headers (lowercase keys, duplicates joined with "; " for
// Set-Cookie and ", " otherwise, as the header package does), and the
// body, decompressed unless the request set DisableDecompression.
type Result struct {
	StatusCode int
	StatusLine string
	Headers    map[string]string
	Body       []byte

	// FinalURL is the URL the response actually came from, after any
	// redirects the Session followed internally.
	FinalURL string

	// SetCookies lists every "Set-Cookie" value observed across the
	// whole redirect chain, in the order received, so the caller's
	// cookie jar can absorb them regardless of which hop set them.
	SetCookies []string
}

// Session is the capability contract: perform one logical request (a
// single call may involve several wire round-trips when following
// redirects) and report back a Result or an error.
type Session interface {
	Do(ctx context.Context, spec RequestSpec) (Result, error)

	// Close releases any pooled connections the Session holds open.
	Close() error
}
