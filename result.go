package httpagent

import (
	"fmt"

	"github.com/bruno-anjos/httpagent/header"
	"github.com/bruno-anjos/httpagent/outcome"
)

// StatusCode wraps an HTTP status and exposes the category/single-code
// predicates the spec names.
type StatusCode uint16

func (s StatusCode) Informational() bool { return s >= 100 && s < 200 }
func (s StatusCode) Successful() bool     { return s >= 200 && s < 300 }
func (s StatusCode) Redirection() bool    { return s >= 300 && s < 400 }
func (s StatusCode) ClientError() bool    { return s >= 400 && s < 500 }
func (s StatusCode) ServerError() bool    { return s >= 500 && s < 600 }

func (s StatusCode) OK() bool                  { return s == 200 }
func (s StatusCode) Found() bool               { return s == 302 }
func (s StatusCode) Unauthorized() bool        { return s == 401 }
func (s StatusCode) Forbidden() bool           { return s == 403 }
func (s StatusCode) NotFound() bool            { return s == 404 }
func (s StatusCode) RequestTimeout() bool      { return s == 408 }
func (s StatusCode) InternalServerError() bool { return s == 500 }
func (s StatusCode) ServiceUnavailable() bool  { return s == 503 }

// HTTPResponse owns the body, the parsed response headers, and the
// status code of a completed request.
type HTTPResponse struct {
	StatusCode StatusCode
	Headers    header.Map
	Body       []byte
}

// responseOutcome is the Outcome specialization every pipeline
// produces: Value carries the response, Error carries an ErrorCode,
// Exception carries whatever panicked inside a continuation.
type responseOutcome = outcome.Outcome[*HTTPResponse, ErrorCode]

// HTTPResult is the response-flavoured facade around Outcome described
// in §4.8: status/body/header accessors plus error_message's fallback
// stringification.
type HTTPResult struct {
	out responseOutcome
}

func resultOfValue(r *HTTPResponse) HTTPResult {
	return HTTPResult{out: outcome.Of[*HTTPResponse, ErrorCode](r)}
}

func resultOfError(e ErrorCode) HTTPResult {
	return HTTPResult{out: outcome.OfError[*HTTPResponse, ErrorCode](e)}
}

// IsValue reports whether the result carries a response.
func (r HTTPResult) IsValue() bool { return r.out.IsValue() }

// IsError reports whether the result carries a domain/backend error.
func (r HTTPResult) IsError() bool { return r.out.IsError() }

// IsException reports whether a continuation or pipeline step panicked.
func (r HTTPResult) IsException() bool { return r.out.IsException() }

// StatusCodeValue returns the response's status, or 0 when not in the
// Value state.
func (r HTTPResult) StatusCodeValue() StatusCode {
	v, ok := r.out.Value()
	if !ok {
		return 0
	}
	return v.StatusCode
}

// ResponseBody returns the response body, or nil when not in the
// Value state.
func (r HTTPResult) ResponseBody() []byte {
	v, ok := r.out.Value()
	if !ok {
		return nil
	}
	return v.Body
}

// ResponseBodyString decodes the response body as a plain string.
func (r HTTPResult) ResponseBodyString() string {
	return string(r.ResponseBody())
}

// ResponseHeaders returns the response header map, or nil when not in
// the Value state.
func (r HTTPResult) ResponseHeaders() header.Map {
	v, ok := r.out.Value()
	if !ok {
		return nil
	}
	return v.Headers
}

// ResponseHeader returns one response header by name.
func (r HTTPResult) ResponseHeader(name string) (string, bool) {
	h := r.ResponseHeaders()
	if h == nil {
		return "", false
	}
	return h.Get(name)
}

// Error returns the carried ErrorCode; the zero value when not in the
// Error state.
func (r HTTPResult) Error() ErrorCode {
	e, _ := r.out.Err()
	return e
}

// ErrorMessage returns, in order of preference: the response's
// http-status-line header, the backend error's string, or an
// exception-summary.
func (r HTTPResult) ErrorMessage() string {
	switch {
	case r.out.IsValue():
		v, _ := r.out.Value()
		if line, ok := v.Headers.StatusLine(); ok {
			return line
		}
		return fmt.Sprintf("HTTP %d", v.StatusCode)
	case r.out.IsError():
		e, _ := r.out.Err()
		return e.String()
	case r.out.IsException():
		exc, _ := r.out.Exception()
		return outcome.Summary(exc)
	default:
		return "<no error>"
	}
}

// Pipe invokes f with the response body as a string when the result
// carries a value, passing an empty string on failure — the pipe
// operator described in §4.8.
func (r HTTPResult) Pipe(f func(string) string) string {
	v, ok := r.out.Value()
	if !ok {
		return f("")
	}
	return f(string(v.Body))
}
