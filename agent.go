package httpagent

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/bruno-anjos/httpagent/backend"
	"github.com/bruno-anjos/httpagent/backend/nethttp"
	"github.com/bruno-anjos/httpagent/cookiejar"
	"github.com/bruno-anjos/httpagent/outcome"
	"github.com/bruno-anjos/httpagent/urlinfo"
	"github.com/bruno-anjos/httpagent/wire"
)

// Agent is a long-lived request context retaining cookies, default
// headers, and toggles against a fixed base URL. It owns mutable
// scratch (the URL buffer and cookie store) and a reused backend
// session; a single method call touches all three, so each call holds
// the Agent's mutex for its whole duration and concurrent calls on one
// Agent run one at a time.
type Agent struct {
	mu sync.Mutex

	base    urlinfo.Info
	session backend.Session
	cookies *cookiejar.Store

	defaultHeaders map[string]string
	baseAuth       AuthConfig

	cookieManagement Toggle
	followRedirects  Toggle
	autoDecompress   Toggle

	config AgentInitialConfig
}

// AgentOption configures an Agent at construction time, beyond
// AgentInitialConfig's wire-level fields.
type AgentOption func(*Agent)

// WithDefaultHeaders installs headers sent on every request unless
// overridden per-call.
func WithDefaultHeaders(headers map[string]string) AgentOption {
	return func(a *Agent) {
		for k, v := range headers {
			a.defaultHeaders[strings.ToLower(k)] = v
		}
	}
}

// WithCookieManagement toggles the cookie subsystem (enabled by
// default).
func WithCookieManagement(t Toggle) AgentOption {
	return func(a *Agent) { a.cookieManagement = t }
}

// WithFollowRedirects toggles redirect-following (enabled by default).
func WithFollowRedirects(t Toggle) AgentOption {
	return func(a *Agent) { a.followRedirects = t }
}

// WithAutoDecompress toggles transparent response decompression
// (enabled by default).
func WithAutoDecompress(t Toggle) AgentOption {
	return func(a *Agent) { a.autoDecompress = t }
}

// NewAgent parses baseURL once and builds the backend session it will
// reuse for every subsequent call.
func NewAgent(baseURL string, cfg AgentInitialConfig, opts ...AgentOption) (*Agent, error) {
	info := urlinfo.Parse(baseURL)
	if !info.IsValid() {
		return nil, fmt.Errorf("httpagent: base URL %q is malformed", baseURL)
	}

	var baseAuth AuthConfig
	u, err := url.Parse(info.String())
	if err == nil && u.User != nil {
		if pass, ok := u.User.Password(); ok {
			baseAuth = AuthConfig{Username: u.User.Username(), Password: pass, Scheme: AuthBasic}
		}
	}

	sess, err := nethttp.New(cfg.Proxy.URL())
	if err != nil {
		return nil, err
	}

	a := &Agent{
		base:             info,
		session:          sess,
		cookies:          cookiejar.NewStore(),
		defaultHeaders:   make(map[string]string),
		baseAuth:         baseAuth,
		cookieManagement: Enable,
		followRedirects:  Enable,
		autoDecompress:   Enable,
		config:           cfg,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Close releases the Agent's backend session.
func (a *Agent) Close() error {
	return a.session.Close()
}

func (a *Agent) Get(ctx context.Context, path string, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "GET", path, cfg, nil)
}

func (a *Agent) Head(ctx context.Context, path string, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "HEAD", path, cfg, nil)
}

func (a *Agent) Delete(ctx context.Context, path string, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "DELETE", path, cfg, nil)
}

func (a *Agent) Post(ctx context.Context, path string, body any, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "POST", path, cfg, body)
}

func (a *Agent) Put(ctx context.Context, path string, body any, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "PUT", path, cfg, body)
}

func (a *Agent) Patch(ctx context.Context, path string, body any, cfg AgentRequestConfig) HTTPResult {
	return a.requestImpl(ctx, "PATCH", path, cfg, body)
}

// requestImpl implements §4.6, step by step as the spec enumerates it.
func (a *Agent) requestImpl(ctx context.Context, method, path string, cfg AgentRequestConfig, body any) (result HTTPResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// A panic anywhere below, including in a caller-supplied body hook
	// or streaming receiver, surfaces as the exception arm.
	defer func() {
		if r := recover(); r != nil {
			result = HTTPResult{out: outcome.OfException[*HTTPResponse, ErrorCode](r)}
		}
	}()

	if !a.base.IsValid() {
		return resultOfError(ErrURLMalformed)
	}

	// Step 8: expire before building the send list.
	if a.cookieManagement == Enable {
		a.cookies.RemoveExpired(cookiejar.Now())
	}

	// Step 1: per-request auth overrides agent-inherited auth.
	auth := a.baseAuth
	if cfg.Auth.Scheme != AuthNone {
		auth = cfg.Auth
	}

	// Step 2: extend the base URL in place, restoring it on return.
	guard := a.base.AppendPath(path)
	defer guard.Release()

	// Step 3: re-apply query parameters fresh each time.
	u, err := url.Parse(a.base.String())
	if err != nil {
		return resultOfError(errorCodeFromErr(err))
	}
	applyQueryParams(u, cfg.Params)

	requestID := uuid.New().String()
	logFields := log.Fields{"agent_request_id": requestID, "method": method, "url": u.String()}

	// Step 7: compose headers — agent defaults, then per-request
	// overlays, by name.
	headers := make(map[string]string, len(a.defaultHeaders)+len(cfg.Headers)+2)
	for k, v := range a.defaultHeaders {
		headers[k] = v
	}
	for k, v := range cfg.Headers {
		headers[strings.ToLower(k)] = v
	}
	if _, ok := headers["user-agent"]; !ok {
		headers["user-agent"] = defaultUserAgent
	}
	if auth.Scheme == AuthBasic {
		headers["authorization"] = basicAuthHeader(auth.Username, auth.Password)
	}

	// Step 9: body, same as terse mode.
	var bodyReader *bytes.Reader
	if body != nil {
		raw, err := wire.AsByteSeq(body)
		if err != nil {
			return resultOfError(errorCodeFromErr(err))
		}
		bodyReader = bytes.NewReader(raw)
		if _, ok := headers["content-type"]; !ok {
			if cfg.ContentType != "" {
				headers["content-type"] = cfg.ContentType
			} else {
				headers["content-type"] = wire.QueryContentType(body)
			}
		}
	}

	// Step 8 (continued): build and emit the Cookie header.
	if a.cookieManagement == Enable {
		extras := make([]cookiejar.Pair, 0, len(cfg.Cookies))
		for name, value := range cfg.Cookies {
			extras = append(extras, cookiejar.Pair{Name: name, Value: value})
		}
		refs := a.cookies.BuildSendListWithExtras(a.base.Host(), u.Path, a.base.Secure(), a.base.IsIPHost(), cookiejar.Now(), extras)
		if len(refs) > 0 {
			parts := make([]string, 0, len(refs))
			for _, ref := range refs {
				parts = append(parts, ref.Name()+"="+ref.Value())
			}
			headers["cookie"] = strings.Join(parts, "; ")
		}
	}

	spec := backend.RequestSpec{
		Method:               method,
		URL:                  u.String(),
		Headers:              headers,
		Timeout:              a.config.Timeout,
		DisableDecompression: a.autoDecompress == Disable,
		DisableRedirects:     a.followRedirects == Disable,
		MaxRedirects:         10,
	}
	if bodyReader != nil {
		spec.Body = bodyReader
	}

	log.WithFields(logFields).Debug("agent request")

	res, err := a.session.Do(ctx, spec)
	if err != nil {
		log.WithFields(logFields).WithError(err).Debug("agent request failed")
		return resultOfError(errorCodeFromErr(err))
	}

	// Step 11: feed any Set-Cookie headers back into the jar.
	if a.cookieManagement == Enable {
		now := cookiejar.Now()
		for _, sc := range res.SetCookies {
			a.cookies.InsertFromSetCookie(sc, a.base.Host(), u.Path, now)
		}
	}

	if cfg.StreamingReceiver != nil {
		cfg.StreamingReceiver(res.Body)
		res.Body = nil
	}

	return resultOfValue(toHTTPResponse(res))
}
