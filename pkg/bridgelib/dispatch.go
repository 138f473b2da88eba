package bridgelib

import (
	"fmt"
	"net/http"
)

// ResponseWriter is the minimal response surface the dispatcher writes
// to. Headers added before WriteResponse keep their multiplicity: a
// header added N times is emitted as N values.
type ResponseWriter interface {
	AddHeader(key, value string)
	WriteResponse(status int, contentType string, body []byte) error
}

const htmlContentType = "text/html; charset=utf-8"

// dispatch renders one backend result onto w. originalPath is the
// pre-rewrite request path, handed to the asset host's finalize hook.
func (p *Proxy) dispatch(res BackendResult, originalPath string, w ResponseWriter) error {
	switch r := res.(type) {
	case HTMLResult:
		html := TransformHTML(r.Content, r.Module, p.cfg.Assets)
		if p.cfg.FinalizeHTML != nil {
			// Headers go on only once the hook succeeds; a failing
			// hook must not leave result headers on the error response.
			finalized, err := p.cfg.FinalizeHTML(originalPath, html)
			if err != nil {
				return fmt.Errorf("finalizing html for %s: %w", originalPath, err)
			}
			html = finalized
		}
		copyHeader(w, r.Header)
		return w.WriteResponse(http.StatusOK, htmlContentType, []byte(html))
	case BinaryResult:
		copyHeader(w, r.Header)
		return w.WriteResponse(r.Status, r.ContentType, r.Content)
	case RedirectResult:
		copyHeader(w, r.Header)
		w.AddHeader("Location", r.Location)
		return w.WriteResponse(r.Status, "", nil)
	}
	// The result set is closed; reaching this arm means a delegate
	// handed the response path something it cannot render.
	return fmt.Errorf("unhandled backend result %T (%+v)", res, res)
}

// copyHeader copies every value of every key, preserving multiplicity.
func copyHeader(w ResponseWriter, h http.Header) {
	for key, values := range h {
		for _, value := range values {
			w.AddHeader(key, value)
		}
	}
}
