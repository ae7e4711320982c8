// Package cookiejar implements the cookie management subsystem: the
// Cookie entity, its identity-keyed Store, the Set-Cookie parser, and
// the domain/path matching and send-order rules used to build one
// request's Cookie header.
//
// Grounded on chttpp's cookie/cookie_ref/cookie_store
// (original_source/include/underlying/common.hpp).
package cookiejar

import "time"

// Cookie is a single stored cookie. Equality and identity are over the
// (Name, Domain, Path) triple only — Value, Secure, and Expires are not
// part of identity, matching chttpp's cookie::operator==.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	// Path defaults to "/" when constructed via New.
	Path   string
	Secure bool
	// Expires is the cookie's expiry; the zero value means "no
	// expiry set yet" — New defaults it to the far-future session
	// sentinel, i.e. a session cookie.
	Expires time.Time
	// CreateTime is set once, at construction, and used only for
	// send-order tie-breaking.
	CreateTime time.Time
}

// sessionExpiry is the "never explicitly expires" sentinel — an instant
// 2^62 seconds after the Unix epoch, standing in for
// std::chrono::system_clock::time_point::max() in the original.
var sessionExpiry = time.Unix(1<<62, 0).UTC()

// New builds a Cookie with the spec's defaults: Path "/", Expires set
// to the session sentinel, CreateTime set to now.
func New(name, value string) Cookie {
	now := timeNow()
	return Cookie{
		Name:       name,
		Value:      value,
		Path:       "/",
		Expires:    sessionExpiry,
		CreateTime: now,
	}
}

// identity is the (name, domain, path) triple used as a Cookie's key.
type identity struct {
	name, domain, path string
}

func (c Cookie) identity() identity {
	return identity{name: c.Name, domain: c.Domain, path: c.Path}
}

// timeNow is a seam for deterministic tests.
var timeNow = time.Now

// Ref is a lightweight, order-only view over a Cookie or an ad-hoc
// (name, value) pair. Equality and ordering only ever consider Name,
// the length of Path, and CreateTime — never Domain or Value — which
// is why two distinct stored cookies may legitimately compare equal
// under Ref's relation while remaining distinct in the Store (see
// DESIGN.md / spec.md §9 "Cookie value ordering in the send list").
type Ref struct {
	name       string
	value      string
	pathLength int
	createTime time.Time
}

// RefFromCookie builds a Ref borrowing from a stored Cookie.
func RefFromCookie(c Cookie) Ref {
	return Ref{name: c.Name, value: c.Value, pathLength: len(c.Path), createTime: c.CreateTime}
}

// RefFromPair builds a Ref for an ad-hoc, per-request (name, value)
// cookie. Its path length is always that of "/", matching chttpp's
// cookie_ref(pair, path="/") default — neither real call site
// (winhttp.hpp, libcurl.hpp) ever supplies an explicit path. Its
// CreateTime is the session sentinel (sessionExpiry) so that, among
// cookies of equal path length, ad-hoc pairs sort after any stored
// cookie with the same name and path length.
func RefFromPair(name, value string) Ref {
	return Ref{name: name, value: value, pathLength: len("/"), createTime: sessionExpiry}
}

// Name returns the cookie's name.
func (r Ref) Name() string { return r.name }

// Value returns the cookie's value.
func (r Ref) Value() string { return r.value }

// Less implements the §3 CookieRef ordering: name ascending, then path
// length descending, then create-time ascending.
func Less(a, b Ref) bool {
	if a.name != b.name {
		return a.name < b.name
	}
	if a.pathLength != b.pathLength {
		return a.pathLength > b.pathLength
	}
	return a.createTime.Before(b.createTime)
}
