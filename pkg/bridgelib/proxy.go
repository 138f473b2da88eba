package bridgelib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request is one inbound request as seen by the router.
type Request struct {
	// Path is the request path with its query string.
	Path   string
	Method string
	Header http.Header
	// Body is the raw request body stream; consulted only for methods
	// that carry one.
	Body io.Reader
}

// Proxy is the request-handling pipeline: rewrite, bypass decision,
// body collection, backend delegation, dispatch. Its configuration is
// fixed at construction; Handle is safe for concurrent use.
type Proxy struct {
	cfg Config
	log *Logger
}

// NewProxy validates cfg and builds the pipeline. The logging
// threshold is checked here, so a pipeline configured with a bad level
// never starts.
func NewProxy(cfg Config) (*Proxy, error) {
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if cfg.Delegate == nil {
		return nil, fmt.Errorf("backend delegate is required")
	}
	if cfg.LogLevel < LevelError || cfg.LogLevel > LevelDebug {
		return nil, fmt.Errorf("unknown log level %d", int(cfg.LogLevel))
	}
	return &Proxy{cfg: cfg, log: NewLogger(cfg.LogLevel, cfg.LogSink)}, nil
}

// Handle runs the pipeline for one request. It reports false when the
// request belongs to the surrounding host (nothing written); when it
// reports true the response has been fully written to w, exactly once.
// A non-nil error is a contract failure that w could not render.
func (p *Proxy) Handle(ctx context.Context, req Request, w ResponseWriter) (bool, error) {
	originalPath := req.Path
	path := applyRewrites(originalPath, p.cfg.Rewrites)

	if p.bypass(path) {
		p.log.Debug("leaving request to the host", Fields{"path": path})
		return false, nil
	}

	var body []byte
	if req.Body != nil && methodCarriesBody(req.Method) {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			p.log.Error("reading request body", Fields{"path": originalPath, "error": err.Error()})
			return true, writePlainError(w, err)
		}
		body = b
	}

	p.log.Info("bridging to backend", Fields{"method": req.Method, "path": path})
	res, err := p.cfg.Delegate(ctx, DelegateRequest{
		Path:    path,
		Method:  req.Method,
		Header:  req.Header,
		Body:    body,
		BaseURL: p.cfg.BackendURL,
		Log:     p.log,
	})
	if err != nil {
		p.log.Error("backend delegate failed", Fields{"url": originalPath, "error": err.Error()})
		return true, writePlainError(w, err)
	}

	if err := p.dispatch(res, originalPath, w); err != nil {
		return true, err
	}
	p.log.Info("response written", Fields{"path": originalPath})
	return true, nil
}

// applyRewrites applies the first rule whose prefix matches; the
// rewritten path is not re-matched against later rules.
func applyRewrites(path string, rules []RewriteRule) string {
	for _, rule := range rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule.Replacement + strings.TrimPrefix(path, rule.Prefix)
		}
	}
	return path
}

// bypass reports whether the path is the host's to serve: the
// configured predicate matched, the asset host owns it, or it names a
// script or stylesheet source file. Query strings are ignored.
func (p *Proxy) bypass(path string) bool {
	path = stripQuery(path)
	if p.cfg.Bypass != nil && p.cfg.Bypass(path) {
		return true
	}
	if strings.HasPrefix(path, AssetHostPrefix) || strings.Contains(path, DependencySegment) {
		return true
	}
	for _, ext := range assetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func methodCarriesBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// writePlainError renders a request-scoped failure as a plain-text 500
// carrying the error message.
func writePlainError(w ResponseWriter, err error) error {
	return w.WriteResponse(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(err.Error()))
}
