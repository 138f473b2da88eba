package bridgelib

import "net/http"

// BackendResult is the outcome of one backend delegation. The set of
// variants is closed: HTMLResult, BinaryResult or RedirectResult.
// Headers attached to a result are copied onto the response verbatim,
// preserving multiplicity.
type BackendResult interface {
	backendResult()
}

// HTMLResult is an HTML document to transform and serve.
type HTMLResult struct {
	Content string
	// Module names the module-specific dev assets to inject; empty
	// means none.
	Module string
	Header http.Header
}

// BinaryResult is any non-HTML payload, served unchanged.
type BinaryResult struct {
	Content     []byte
	ContentType string
	Status      int
	Header      http.Header
}

// RedirectResult carries an already-normalized redirect location.
type RedirectResult struct {
	Status   int
	Location string
	Header   http.Header
}

func (HTMLResult) backendResult()     {}
func (BinaryResult) backendResult()   {}
func (RedirectResult) backendResult() {}
