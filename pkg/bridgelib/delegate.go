package bridgelib

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// DelegateRequest is everything a delegate needs to obtain the
// backend's answer for one bridged request.
type DelegateRequest struct {
	// Path is the effective (post-rewrite) path with its query string.
	Path   string
	Method string
	Header http.Header
	// Body is the fully buffered request body; nil when the request
	// carries none.
	Body []byte
	// BaseURL is the backend base URL from the configuration.
	BaseURL string
	// Log reports delegate-side events through the proxy's logger.
	Log *Logger
}

// Delegate obtains a BackendResult for one request. Implementations
// own transport concerns, including retries if any; the router treats
// a returned error as a request-scoped failure.
type Delegate func(ctx context.Context, req DelegateRequest) (BackendResult, error)

// ModuleExtractor derives an optional module identifier from a
// successful backend HTML response; empty means absent.
type ModuleExtractor func(path, html string) string

// NewHTTPDelegate builds the reference delegate: it forwards the
// request to the backend over HTTP with redirect following disabled and
// classifies the response by status and content type. extract may be
// nil when no module-specific assets exist.
func NewHTTPDelegate(client *http.Client, extract ModuleExtractor) Delegate {
	if client == nil {
		client = &http.Client{}
	}
	// 3xx answers must come back to us so their locations can be
	// rewritten for the dev-server root.
	inner := *client
	inner.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return func(ctx context.Context, req DelegateRequest) (BackendResult, error) {
		logger := req.Log
		if logger == nil {
			logger = NewLogger(LevelError, nil)
		}

		target := JoinURL(req.BaseURL, req.Path)
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader(req.Body))
		if err != nil {
			return nil, fmt.Errorf("building backend request for %s: %w", target, err)
		}
		for key, values := range req.Header {
			// The transport negotiates compression itself and decodes
			// the response; forwarding the browser's Accept-Encoding
			// would hand the transformer raw gzip bytes.
			if http.CanonicalHeaderKey(key) == "Accept-Encoding" {
				continue
			}
			for _, value := range values {
				httpReq.Header.Add(key, value)
			}
		}

		logger.Debug("fetching backend", Fields{"url": target, "method": req.Method})
		resp, err := inner.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", target, err)
		}
		defer resp.Body.Close()

		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading backend response for %s: %w", target, err)
		}

		header := cookieHeader(resp.Header)

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			if location == "" {
				return nil, fmt.Errorf("backend redirect %d for %s carries no Location header", resp.StatusCode, target)
			}
			base, err := url.Parse(req.BaseURL)
			if err != nil {
				return nil, fmt.Errorf("parsing backend base URL %q: %w", req.BaseURL, err)
			}
			return RedirectResult{
				Status:   resp.StatusCode,
				Location: NormalizeRedirect(location, base.Path),
				Header:   header,
			}, nil
		}

		if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
			module := ""
			if extract != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
				module = extract(req.Path, string(content))
			}
			return HTMLResult{Content: string(content), Module: module, Header: header}, nil
		}

		return BinaryResult{
			Content:     content,
			ContentType: resp.Header.Get("Content-Type"),
			Status:      resp.StatusCode,
			Header:      header,
		}, nil
	}
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

// cookieHeader keeps the backend's Set-Cookie values, each as its own
// entry.
func cookieHeader(h http.Header) http.Header {
	cookies := h.Values("Set-Cookie")
	if len(cookies) == 0 {
		return nil
	}
	out := http.Header{}
	for _, c := range cookies {
		out.Add("Set-Cookie", c)
	}
	return out
}

// MetaModuleExtractor reads the module identifier from
// <meta name="<name>" content="..."> in the response document.
func MetaModuleExtractor(name string) ModuleExtractor {
	re := regexp.MustCompile(`(?i)<meta\b[^>]*\sname="` + regexp.QuoteMeta(name) + `"[^>]*\scontent="([^"]*)"`)
	return func(_, html string) string {
		if m := re.FindStringSubmatch(html); m != nil {
			return m[1]
		}
		return ""
	}
}
