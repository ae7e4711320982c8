package cookiejar

import (
	"sort"
	"strings"
	"time"
)

// Store holds cookies keyed by (name, domain, path) identity. The zero
// value is not usable; construct with NewStore.
type Store struct {
	byIdentity map[identity]Cookie
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byIdentity: make(map[identity]Cookie)}
}

// Upsert inserts c, or — when a cookie with the same identity already
// exists — overwrites only its Value, Expires, and Secure fields,
// matching chttpp's "extract and overwrite" merge (Domain, Path, Name,
// and CreateTime of the existing entry are preserved).
func (s *Store) Upsert(c Cookie) {
	key := c.identity()
	if existing, ok := s.byIdentity[key]; ok {
		existing.Value = c.Value
		existing.Expires = c.Expires
		existing.Secure = c.Secure
		s.byIdentity[key] = existing
		return
	}
	s.byIdentity[key] = c
}

// Remove deletes the cookie matching (name, domain, path), if present.
func (s *Store) Remove(name, domain, path string) {
	delete(s.byIdentity, identity{name: name, domain: domain, path: path})
}

// RemoveExpired deletes every cookie whose Expires is at or before now.
// It returns the number of cookies removed.
func (s *Store) RemoveExpired(now time.Time) int {
	n := 0
	for key, c := range s.byIdentity {
		if !c.Expires.After(now) {
			delete(s.byIdentity, key)
			n++
		}
	}
	return n
}

// All returns every stored cookie, in unspecified order.
func (s *Store) All() []Cookie {
	out := make([]Cookie, 0, len(s.byIdentity))
	for _, c := range s.byIdentity {
		out = append(out, c)
	}
	return out
}

// Len reports how many cookies are stored.
func (s *Store) Len() int { return len(s.byIdentity) }

// BuildSendList collects every stored cookie whose Domain matches host
// (suffix match, with the IP-host exact-match exception), whose Path is
// a prefix of requestPath, and whose Secure flag is satisfied by
// secureChannel, then returns them ordered per the §3 CookieRef rule:
// name ascending, path length descending, create-time ascending.
func (s *Store) BuildSendList(host, requestPath string, secureChannel, hostIsIP bool, now time.Time) []Ref {
	bareHost := stripPort(host)

	refs := make([]Ref, 0, len(s.byIdentity))
	for _, c := range s.byIdentity {
		if !c.Expires.After(now) {
			continue
		}
		if c.Secure && !secureChannel {
			continue
		}
		if !domainMatches(c.Domain, bareHost, hostIsIP) {
			continue
		}
		if !pathMatches(c.Path, requestPath) {
			continue
		}
		refs = append(refs, RefFromCookie(c))
	}

	sort.SliceStable(refs, func(i, j int) bool { return Less(refs[i], refs[j]) })
	return refs
}

// Pair is an ad-hoc per-request (name, value) cookie, supplied directly
// by the caller rather than stored in the jar. Pairs are folded into
// the send list without any domain/path/secure check, per §4.4.3.
type Pair struct {
	Name, Value string
}

// BuildSendListWithExtras is BuildSendList plus a caller-supplied batch
// of ad-hoc pairs, merged into the same ordered list.
func (s *Store) BuildSendListWithExtras(host, requestPath string, secureChannel, hostIsIP bool, now time.Time, extras []Pair) []Ref {
	refs := s.BuildSendList(host, requestPath, secureChannel, hostIsIP, now)
	for _, p := range extras {
		refs = append(refs, RefFromPair(p.Name, p.Value))
	}
	sort.SliceStable(refs, func(i, j int) bool { return Less(refs[i], refs[j]) })
	return refs
}

// Now returns the current time; exposed so callers outside this
// package can pass a consistent instant to BuildSendList/RemoveExpired
// without importing time twice for a single call.
func Now() time.Time { return timeNow() }

// domainMatches implements chttpp's domain-suffix rule: exact match
// always passes; otherwise, when the host is not an IP literal, the
// cookie's domain matches if it is a dot-prefixed suffix of host (i.e.
// host ends with "."+domain), which is how chttpp distinguishes a
// legitimate parent-domain cookie from an unrelated domain that merely
// shares a trailing substring.
func domainMatches(cookieDomain, host string, hostIsIP bool) bool {
	if cookieDomain == "" {
		// Accommodates agent-side manually inserted cookies that
		// never went through Set-Cookie and so carry no domain.
		return true
	}
	if cookieDomain == host {
		return true
	}
	if hostIsIP {
		return false
	}
	suffix := "." + cookieDomain
	return strings.HasSuffix(host, suffix)
}

// pathMatches implements chttpp's path-prefix rule: cookiePath matches
// requestPath when requestPath starts with cookiePath and either the
// two are equal, cookiePath ends in '/', or the next character in
// requestPath after the shared prefix is '/'.
func pathMatches(cookiePath, requestPath string) bool {
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if cookiePath == requestPath {
		return true
	}
	if strings.HasSuffix(cookiePath, "/") {
		return true
	}
	return requestPath[len(cookiePath)] == '/'
}

func stripPort(host string) string {
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end >= 0 {
			return host[:end+1]
		}
		return host
	}
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		return host[:idx]
	}
	return host
}
