package httpagent

import "time"

// Toggle is a two-state enable/disable switch, matching the
// enable|disable enum used for the agent's cookie-management,
// redirect-following, and decompression settings.
type Toggle bool

const (
	Disable Toggle = false
	Enable  Toggle = true
)

// AuthScheme selects how (or whether) basic auth is attached to a
// request.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBasic
)

// AuthConfig is basic-auth configuration. A non-None Scheme without
// credentials is undefined behavior, per the specification.
type AuthConfig struct {
	Username string
	Password string
	Scheme   AuthScheme
}

// ProxyScheme names the supported proxy transports.
type ProxyScheme string

const (
	ProxyHTTP    ProxyScheme = "http"
	ProxyHTTPS   ProxyScheme = "https"
	ProxySOCKS4  ProxyScheme = "socks4"
	ProxySOCKS4A ProxyScheme = "socks4a"
	ProxySOCKS5  ProxyScheme = "socks5"
	ProxySOCKS5H ProxyScheme = "socks5h"
)

// ProxyConfig describes the proxy path for a request or an agent.
type ProxyConfig struct {
	Address string
	Scheme  ProxyScheme
	Auth    AuthConfig
}

// URL renders the proxy as a dialable URL, e.g. "socks5://host:1080".
func (p ProxyConfig) URL() string {
	if p.Address == "" {
		return ""
	}
	return string(p.Scheme) + "://" + p.Address
}

// HTTPVersion is the client's HTTP version preference.
type HTTPVersion string

const (
	HTTP1_1 HTTPVersion = "http1_1"
	HTTP2   HTTPVersion = "http2"
)

// RequestConfigForGet is the configuration shape for GET-like,
// bodyless requests in terse mode.
type RequestConfigForGet struct {
	Headers map[string]string
	Params  map[string]string
	Version HTTPVersion
	Timeout time.Duration
	Auth    AuthConfig
	Proxy   ProxyConfig
}

// RequestConfig extends RequestConfigForGet with a Content-Type for
// body-bearing terse requests.
type RequestConfig struct {
	RequestConfigForGet
	ContentType string
}

// AgentInitialConfig configures an Agent at construction time.
type AgentInitialConfig struct {
	Version HTTPVersion
	Timeout time.Duration
	Proxy   ProxyConfig
}

// AgentRequestConfig configures one call made through an Agent.
type AgentRequestConfig struct {
	ContentType string
	Headers     map[string]string
	Cookies     map[string]string
	Params      map[string]string
	Auth        AuthConfig
	// StreamingReceiver, when set, is invoked once, after the transfer
	// has completed, with the whole response body; the body is still
	// read fully into memory first and is not delivered chunk by
	// chunk. Response.Body is empty when this is used.
	StreamingReceiver func(chunk []byte)
}
