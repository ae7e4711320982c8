package cookiejar

import (
	"strconv"
	"strings"
	"time"
)

// InsertFromSetCookie parses one Set-Cookie header value — possibly
// several cookie bodies merged by the header package's "; "-joining of
// duplicate Set-Cookie lines (header/header.go) — and upserts each
// resulting cookie into s, using requestHost (without any port) and
// requestPath as the defaults for an omitted Domain/Path attribute.
//
// A merged value is split into "; "-delimited segments; a segment
// commits the cookie in progress and starts a new one whenever its name
// is not one of the recognized attribute names (domain, path, secure,
// httponly, samesite, expires, max-age) — i.e. it is itself a new
// cookie's name=value body, not an attribute of the current cookie.
// Grounded on chttpp's cookie_store::insert_from_set_cookie.
func (s *Store) InsertFromSetCookie(headerValue, requestHost, requestPath string, now time.Time) {
	parts := splitAttributes(headerValue)
	if len(parts) == 0 {
		return
	}

	var current *Cookie
	commit := func() {
		if current != nil {
			s.Upsert(*current)
			current = nil
		}
	}

	for _, part := range parts {
		attrName, attrValue := splitAttribute(part)
		if current != nil && isAttributeName(attrName) {
			applyAttribute(current, attrName, attrValue, now)
			continue
		}

		commit()

		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		value := strings.TrimSpace(part[eq+1:])
		if name == "" {
			continue
		}
		c := New(name, value)
		c.Domain = stripPort(requestHost)
		c.Path = requestPath
		current = &c
	}
	commit()
}

// isAttributeName reports whether name is a recognized Set-Cookie
// attribute keyword, as opposed to a new cookie's own name.
func isAttributeName(name string) bool {
	switch name {
	case "domain", "path", "secure", "httponly", "samesite", "expires", "max-age":
		return true
	}
	return false
}

// splitAttributes splits a Set-Cookie value on "; " boundaries, the
// way the header package re-joins duplicate Set-Cookie lines, and also
// handles a single Set-Cookie value's own "; "-delimited attributes.
func splitAttributes(v string) []string {
	raw := strings.Split(v, ";")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitAttribute(attr string) (name, value string) {
	if eq := strings.IndexByte(attr, '='); eq >= 0 {
		return strings.ToLower(strings.TrimSpace(attr[:eq])), strings.TrimSpace(attr[eq+1:])
	}
	return strings.ToLower(strings.TrimSpace(attr)), ""
}

// applyAttribute dispatches a single Set-Cookie attribute onto c.
// Later, duplicate attributes win (last-wins), matching plain
// left-to-right field assignment over the parsed list.
func applyAttribute(c *Cookie, name, value string, now time.Time) {
	switch name {
	case "domain":
		if value != "" {
			c.Domain = strings.TrimPrefix(value, ".")
		}
	case "path":
		if value != "" {
			c.Path = value
		}
	case "secure":
		c.Secure = true
	case "httponly":
		// Recorded only via presence; the backend contract never
		// exposes HttpOnly cookies back to caller-supplied code, so
		// no field is needed beyond having matched this branch.
	case "samesite":
		// SameSite does not affect local matching/send-order rules
		// in the spec's scope; accepted and ignored.
	case "expires":
		if t, err := time.Parse(time.RFC1123, value); err == nil {
			c.Expires = t.UTC()
		}
	case "max-age":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			// Negative or malformed Max-Age is ignored, leaving
			// whatever Expires default (or prior Expires attribute)
			// already applies.
			return
		}
		c.Expires = now.Add(time.Duration(n) * time.Second)
	}
}
