package nethttp_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bruno-anjos/httpagent/backend"
	"github.com/bruno-anjos/httpagent/backend/nethttp"
)

func TestDoReturnsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	sess, err := nethttp.New("")
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Do(context.Background(), backend.RequestSpec{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "hello", string(res.Body))
	assert.Equal(t, "yes", res.Headers["x-test"])
}

func TestDoFollowsRedirectAndCollectsCookies(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("final"))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "a=1")
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	sess, err := nethttp.New("")
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Do(context.Background(), backend.RequestSpec{Method: http.MethodGet, URL: redirecting.URL})
	require.NoError(t, err)
	assert.Equal(t, "final", string(res.Body))
	assert.Contains(t, res.SetCookies, "a=1")
	assert.Equal(t, final.URL, res.FinalURL)
}

func TestDoRejectsTooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL, http.StatusFound)
	}))
	defer srv.Close()

	sess, err := nethttp.New("")
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Do(context.Background(), backend.RequestSpec{Method: http.MethodGet, URL: srv.URL, MaxRedirects: 2})
	assert.Error(t, err)
}

func TestDoWithDisableRedirectsReturnsRedirectResponse(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("should not be reached"))
	}))
	defer final.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer srv.Close()

	sess, err := nethttp.New("")
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Do(context.Background(), backend.RequestSpec{Method: http.MethodGet, URL: srv.URL, DisableRedirects: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, res.StatusCode)
}

func TestDoDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzipBody(t, "compressed-hello")
		w.Write(gz)
	}))
	defer srv.Close()

	sess, err := nethttp.New("")
	require.NoError(t, err)
	defer sess.Close()

	res, err := sess.Do(context.Background(), backend.RequestSpec{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "compressed-hello", string(res.Body))
}

func gzipBody(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}
