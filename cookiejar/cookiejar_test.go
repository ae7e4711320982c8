package cookiejar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruno-anjos/httpagent/cookiejar"
)

func TestInsertFromSetCookieDefaultsDomainAndPath(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("session=abc123", "api.example.com", "/v1/login", now)

	list := s.BuildSendList("api.example.com", "/v1/login", true, false, now)
	require.Len(t, list, 1)
	assert.Equal(t, "session", list[0].Name())
	assert.Equal(t, "abc123", list[0].Value())
}

func TestInsertFromSetCookieParsesAttributes(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("id=42; Domain=example.com; Path=/app; Secure; HttpOnly", "www.example.com", "/app/x", now)

	// Non-secure channel must not see a Secure cookie.
	insecure := s.BuildSendList("www.example.com", "/app/x", false, false, now)
	assert.Empty(t, insecure)

	secure := s.BuildSendList("www.example.com", "/app/x", true, false, now)
	require.Len(t, secure, 1)
	assert.Equal(t, "42", secure[0].Value())
}

func TestMaxAgeOverridesExpires(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Expires=Mon, 02 Jan 2006 15:04:05 GMT; Max-Age=3600", "host", "/", now)

	live := s.BuildSendList("host", "/", true, false, now.Add(30*time.Minute))
	assert.Len(t, live, 1)

	expired := s.BuildSendList("host", "/", true, false, now.Add(2*time.Hour))
	assert.Empty(t, expired)
}

func TestNegativeMaxAgeIsIgnored(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Max-Age=-1", "host", "/", now)

	list := s.BuildSendList("host", "/", true, false, now)
	require.Len(t, list, 1)
}

func TestDomainSuffixMatchesSubdomain(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Domain=example.com", "example.com", "/", now)

	list := s.BuildSendList("sub.example.com", "/", true, false, now)
	assert.Len(t, list, 1)

	unrelated := s.BuildSendList("notexample.com", "/", true, false, now)
	assert.Empty(t, unrelated)
}

func TestIPHostRequiresExactDomainMatch(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1", "127.0.0.1", "/", now)

	list := s.BuildSendList("127.0.0.1", "/", true, true, now)
	assert.Len(t, list, 1)
}

func TestPathPrefixMatching(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Path=/app", "host", "/app", now)

	assert.Len(t, s.BuildSendList("host", "/app", true, false, now), 1)
	assert.Len(t, s.BuildSendList("host", "/app/sub", true, false, now), 1)
	assert.Empty(t, s.BuildSendList("host", "/application", true, false, now))
	assert.Empty(t, s.BuildSendList("host", "/other", true, false, now))
}

func TestUpsertOverwritesValueExpiresSecureOnly(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Domain=host; Path=/; Secure", "host", "/", now)
	s.InsertFromSetCookie("a=2; Domain=host; Path=/", "host", "/", now)

	require.Equal(t, 1, s.Len())
	list := s.BuildSendList("host", "/", false, false, now)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].Value())
}

func TestSendOrderByNameThenPathLengthThenCreateTime(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("b=1; Path=/", "host", "/", now)
	s.InsertFromSetCookie("a=1; Path=/deep/path", "host", "/deep/path", now)
	s.InsertFromSetCookie("a=2; Path=/", "host", "/", now)

	list := s.BuildSendList("host", "/deep/path", true, false, now)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name())
	assert.Equal(t, "1", list[0].Value())
	assert.Equal(t, "a", list[1].Name())
	assert.Equal(t, "2", list[1].Value())
	assert.Equal(t, "b", list[2].Name())
}

func TestBuildSendListWithExtrasMergesAdHocPairs(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1", "host", "/", now)

	list := s.BuildSendListWithExtras("host", "/", true, false, now, []cookiejar.Pair{{Name: "session", Value: "tmp"}})
	require.Len(t, list, 2)
	names := []string{list[0].Name(), list[1].Name()}
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "session")
}

func TestEmptyCookieDomainMatchesAnyHost(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Upsert(cookiejar.New("manual", "v"))

	list := s.BuildSendList("anything.example", "/", true, false, now)
	require.Len(t, list, 1)
	assert.Equal(t, "manual", list[0].Name())
}

func TestInsertFromSetCookieSplitsMergedMultiCookieValue(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// The merged form header.Map produces when a response sends two
	// Set-Cookie lines: "a=1; Path=/" and "b=2".
	s.InsertFromSetCookie("a=1; Path=/; b=2", "host", "/app", now)

	require.Equal(t, 2, s.Len())

	atRoot := s.BuildSendList("host", "/", true, false, now)
	names := map[string]string{}
	for _, ref := range atRoot {
		names[ref.Name()] = ref.Value()
	}
	assert.Equal(t, "1", names["a"])
	_, bAtRoot := names["b"]
	assert.False(t, bAtRoot, "b was scoped to the default request path, not Path=/")

	atAppPath := s.BuildSendList("host", "/app", true, false, now)
	names = map[string]string{}
	for _, ref := range atAppPath {
		names[ref.Name()] = ref.Value()
	}
	assert.Equal(t, "1", names["a"])
	assert.Equal(t, "2", names["b"])
}

func TestRefFromPairUsesFixedRootPathLength(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// A stored cookie scoped to a deep path should sort before an
	// ad-hoc pair of the same name, since ad-hoc pairs always compare
	// as path "/" regardless of the live request path.
	s.InsertFromSetCookie("dup=stored; Path=/deep", "host", "/deep", now)

	list := s.BuildSendListWithExtras("host", "/deep", true, false, now, []cookiejar.Pair{{Name: "dup", Value: "adhoc"}})
	require.Len(t, list, 2)
	assert.Equal(t, "stored", list[0].Value())
	assert.Equal(t, "adhoc", list[1].Value())
}

func TestRemoveExpiredDeletesPastCookies(t *testing.T) {
	s := cookiejar.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.InsertFromSetCookie("a=1; Max-Age=10", "host", "/", now)
	s.InsertFromSetCookie("b=1", "host", "/", now)

	removed := s.RemoveExpired(now.Add(time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
}
