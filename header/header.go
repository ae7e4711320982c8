// Package header implements the one-line response-header canonicalizer:
// lowercase keys, "; "-joined Set-Cookie duplicates, ", "-joined
// duplicates of everything else. See chttpp's
// parse_response_header_oneline (original_source/include/underlying/common.hpp).
package header

import "strings"

// statusLineKey is the fixed key under which an "HTTP ..." status line
// is stored.
const statusLineKey = "http-status-line"

// Map is a case-insensitive (lowercase-keyed) header multimap, built up
// one raw line at a time.
type Map map[string]string

// New returns an empty header Map.
func New() Map {
	return make(Map)
}

// ParseLine processes one raw header line (CRLF already stripped) and
// merges it into m.
func (m Map) ParseLine(line string) {
	if strings.HasPrefix(line, "HTTP") {
		m[statusLineKey] = line
		return
	}

	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return
	}

	key := strings.ToLower(line[:colon])
	value := strings.TrimLeft(line[colon+1:], " ")

	isSetCookie := key == "set-cookie"

	if existing, ok := m[key]; ok {
		sep := ", "
		if isSetCookie {
			sep = "; "
		}
		m[key] = existing + sep + value
		return
	}
	m[key] = value
}

// StatusLine returns the stored "HTTP ..." status line, if any.
func (m Map) StatusLine() (string, bool) {
	v, ok := m[statusLineKey]
	return v, ok
}

// Get returns the value stored under the lowercased key.
func (m Map) Get(key string) (string, bool) {
	v, ok := m[strings.ToLower(key)]
	return v, ok
}
