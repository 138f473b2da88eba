package bridgelib

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runDelegate(t *testing.T, d Delegate, req DelegateRequest) (BackendResult, error) {
	t.Helper()
	req.Log = NewLogger(LevelError, nil)
	return d(context.Background(), req)
}

func TestHTTPDelegateClassifiesHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("x"))
		assert.Equal(t, "yes", r.Header.Get("X-Forwarded"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><head><meta name="vite-module" content="admin"></head></html>`)
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, MetaModuleExtractor("vite-module"))
	res, err := runDelegate(t, d, DelegateRequest{
		Path:    "/page?x=1",
		Method:  http.MethodGet,
		Header:  http.Header{"X-Forwarded": {"yes"}},
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	html, ok := res.(HTMLResult)
	require.True(t, ok, "expected HTMLResult, got %T", res)
	assert.Equal(t, "admin", html.Module)
	assert.Contains(t, html.Content, "vite-module")
}

func TestHTTPDelegateSkipsExtractionOnFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `<html><meta name="vite-module" content="admin"></html>`)
	}))
	defer srv.Close()

	extracted := false
	d := NewHTTPDelegate(nil, func(string, string) string {
		extracted = true
		return "admin"
	})
	res, err := runDelegate(t, d, DelegateRequest{Path: "/boom", Method: http.MethodGet, BaseURL: srv.URL})
	require.NoError(t, err)

	html, ok := res.(HTMLResult)
	require.True(t, ok)
	assert.False(t, extracted)
	assert.Empty(t, html.Module)
}

func TestHTTPDelegateClassifiesBinary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, `{"ok":false}`)
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, nil)
	res, err := runDelegate(t, d, DelegateRequest{Path: "/api", Method: http.MethodGet, BaseURL: srv.URL})
	require.NoError(t, err)

	bin, ok := res.(BinaryResult)
	require.True(t, ok, "expected BinaryResult, got %T", res)
	assert.Equal(t, http.StatusTeapot, bin.Status)
	assert.Equal(t, "application/json", bin.ContentType)
	assert.Equal(t, `{"ok":false}`, string(bin.Content))
}

func TestHTTPDelegateNormalizesRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Set-Cookie", "session=a")
		w.Header().Add("Set-Cookie", "csrf=b")
		w.Header().Set("Location", "/base/landing?ok=1")
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, nil)
	res, err := runDelegate(t, d, DelegateRequest{
		Path:    "/go",
		Method:  http.MethodGet,
		BaseURL: srv.URL + "/base",
	})
	require.NoError(t, err)

	redirect, ok := res.(RedirectResult)
	require.True(t, ok, "expected RedirectResult, got %T", res)
	assert.Equal(t, http.StatusFound, redirect.Status)
	assert.Equal(t, "/landing?ok=1", redirect.Location)
	assert.Equal(t, []string{"session=a", "csrf=b"}, redirect.Header.Values("Set-Cookie"))
}

func TestHTTPDelegateDoesNotFollowRedirects(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Location", "/elsewhere")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv.Close()

	d := NewHTTPDelegate(&http.Client{}, nil)
	res, err := runDelegate(t, d, DelegateRequest{Path: "/go", Method: http.MethodGet, BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.IsType(t, RedirectResult{}, res)
}

func TestHTTPDelegateMissingLocationIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, nil)
	_, err := runDelegate(t, d, DelegateRequest{Path: "/go", Method: http.MethodGet, BaseURL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Location header")
}

func TestHTTPDelegateForwardsMethodAndBody(t *testing.T) {
	var gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, nil)
	_, err := runDelegate(t, d, DelegateRequest{
		Path:    "/form",
		Method:  http.MethodPost,
		Body:    []byte("a=1&b=2"),
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "a=1&b=2", gotBody)
}

func TestHTTPDelegateDecodesCompressedBackends(t *testing.T) {
	const page = `<html><head><link rel="stylesheet" href="/assets/main-prod.css"></head></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, page)
		gz.Close()
	}))
	defer srv.Close()

	d := NewHTTPDelegate(nil, nil)
	res, err := runDelegate(t, d, DelegateRequest{
		Path:   "/page",
		Method: http.MethodGet,
		// Browsers always offer compression; that must not leak through
		// and disable the transport's transparent decoding.
		Header:  http.Header{"Accept-Encoding": {"gzip, deflate, br"}},
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	html, ok := res.(HTMLResult)
	require.True(t, ok, "expected HTMLResult, got %T", res)
	assert.Equal(t, page, html.Content)
}

func TestMetaModuleExtractor(t *testing.T) {
	extract := MetaModuleExtractor("vite-module")
	assert.Equal(t, "admin", extract("/x", `<meta charset="utf-8"><meta name="vite-module" content="admin">`))
	assert.Equal(t, "", extract("/x", `<meta name="other" content="admin">`))
}
