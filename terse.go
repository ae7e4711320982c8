package httpagent

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bruno-anjos/httpagent/backend"
	"github.com/bruno-anjos/httpagent/backend/nethttp"
	"github.com/bruno-anjos/httpagent/header"
	"github.com/bruno-anjos/httpagent/outcome"
	"github.com/bruno-anjos/httpagent/urlinfo"
	"github.com/bruno-anjos/httpagent/wire"
)

const defaultUserAgent = "httpagent/1"

// Get issues a terse, one-shot GET.
func Get(rawURL string, cfg RequestConfigForGet) HTTPResult {
	return terseRequest(context.Background(), "GET", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, "", nil)
}

// Head issues a terse, one-shot HEAD.
func Head(rawURL string, cfg RequestConfigForGet) HTTPResult {
	return terseRequest(context.Background(), "HEAD", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, "", nil)
}

// Delete issues a terse, one-shot DELETE.
func Delete(rawURL string, cfg RequestConfigForGet) HTTPResult {
	return terseRequest(context.Background(), "DELETE", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, "", nil)
}

// Post issues a terse, one-shot POST with body.
func Post(rawURL string, body any, cfg RequestConfig) HTTPResult {
	return terseRequest(context.Background(), "POST", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, cfg.ContentType, body)
}

// Put issues a terse, one-shot PUT with body.
func Put(rawURL string, body any, cfg RequestConfig) HTTPResult {
	return terseRequest(context.Background(), "PUT", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, cfg.ContentType, body)
}

// Patch issues a terse, one-shot PATCH with body.
func Patch(rawURL string, body any, cfg RequestConfig) HTTPResult {
	return terseRequest(context.Background(), "PATCH", rawURL, cfg.Headers, cfg.Params, cfg.Version, cfg.Timeout, cfg.Auth, cfg.Proxy, cfg.ContentType, body)
}

// terseRequest implements §4.5: a fresh throwaway backend session per
// call, URL-credential extraction, query composition, default headers,
// and body attachment.
func terseRequest(
	ctx context.Context,
	method, rawURL string,
	headers map[string]string,
	params map[string]string,
	version HTTPVersion,
	timeout time.Duration,
	auth AuthConfig,
	proxy ProxyConfig,
	contentType string,
	body any,
) (result HTTPResult) {
	// A panic anywhere below, including in a caller-supplied body hook,
	// surfaces as the exception arm.
	defer func() {
		if r := recover(); r != nil {
			result = HTTPResult{out: outcome.OfException[*HTTPResponse, ErrorCode](r)}
		}
	}()

	info := urlinfo.Parse(rawURL)
	if !info.IsValid() {
		return resultOfError(ErrURLMalformed)
	}

	u, err := url.Parse(info.String())
	if err != nil {
		return resultOfError(errorCodeFromErr(err))
	}

	if u.User != nil {
		if pass, ok := u.User.Password(); ok {
			auth = AuthConfig{Username: u.User.Username(), Password: pass, Scheme: AuthBasic}
		}
		u.User = nil
	}

	applyQueryParams(u, params)
	u.Fragment = ""

	composed := make(map[string]string, len(headers)+2)
	for k, v := range headers {
		composed[strings.ToLower(k)] = v
	}
	if _, ok := composed["user-agent"]; !ok {
		composed["user-agent"] = defaultUserAgent
	}
	if auth.Scheme == AuthBasic {
		composed["authorization"] = basicAuthHeader(auth.Username, auth.Password)
	}

	var bodyReader *bytes.Reader
	if body != nil {
		raw, err := wire.AsByteSeq(body)
		if err != nil {
			return resultOfError(errorCodeFromErr(err))
		}
		bodyReader = bytes.NewReader(raw)
		if _, ok := composed["content-type"]; !ok {
			if contentType != "" {
				composed["content-type"] = contentType
			} else {
				composed["content-type"] = wire.QueryContentType(body)
			}
		}
	}

	sess, err := nethttp.New(proxy.URL())
	if err != nil {
		return resultOfError(errorCodeFromErr(err))
	}
	defer sess.Close()

	spec := backend.RequestSpec{
		Method:       method,
		URL:          u.String(),
		Headers:      composed,
		Timeout:      timeout,
		MaxRedirects: 10,
	}
	if bodyReader != nil {
		spec.Body = bodyReader
	}

	log.WithFields(log.Fields{"method": method, "url": spec.URL}).Debug("terse request")

	res, err := sess.Do(ctx, spec)
	if err != nil {
		return resultOfError(errorCodeFromErr(err))
	}

	return resultOfValue(toHTTPResponse(res))
}

func applyQueryParams(u *url.URL, params map[string]string) {
	if len(params) == 0 {
		return
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
}

func toHTTPResponse(res backend.Result) *HTTPResponse {
	h := header.New()
	for k, v := range res.Headers {
		h[k] = v
	}
	if res.StatusLine != "" {
		h.ParseLine(res.StatusLine)
	}
	return &HTTPResponse{
		StatusCode: StatusCode(res.StatusCode),
		Headers:    h,
		Body:       res.Body,
	}
}

func basicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
