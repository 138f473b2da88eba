package bridgelib

// Reserved namespaces and fixed asset constants.
const (
	// AssetHostPrefix marks internal asset-host requests (client
	// bootstrap, resolved ids, filesystem imports).
	AssetHostPrefix = "/@"
	// DependencySegment marks third-party dependency assets served by
	// the asset host.
	DependencySegment = "/node_modules/"
	// ClientBootstrapPath is the asset host's client entry point,
	// always injected first.
	ClientBootstrapPath = "/@vite/client"
)

// ProductionAssetPrefixes are the backend's built-asset mounts. <link>
// and <script> tags referencing them are stripped from backend HTML so
// the production bundle never loads alongside the injected dev bundle.
var ProductionAssetPrefixes = [2]string{"/assets/", "/static/"}

// assetExtensions name files the asset host serves directly; requests
// for them are never bridged.
var assetExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".css"}

// BypassPredicate reports whether a request path should be left to the
// surrounding host. It receives the effective (post-rewrite) path
// without its query string.
type BypassPredicate func(path string) bool

// ModuleResolver maps a module identifier to its dev entry points.
type ModuleResolver func(module string) EntryPoints

// HTMLFinalizer is the asset host's injection hook: one final pass over
// produced HTML before it is sent. It receives the original
// (pre-rewrite) request path.
type HTMLFinalizer func(path, html string) (string, error)

// EntryPoints is a pair of optional script and style asset paths.
type EntryPoints struct {
	Script string
	Style  string
}

// AssetConfig describes which dev assets get injected into HTML.
type AssetConfig struct {
	// Global entry points are injected into every document.
	Global EntryPoints
	// ResolveModule supplies module-specific entry points; consulted
	// only when a result carries a module identifier.
	ResolveModule ModuleResolver
}

// RewriteRule maps a literal path prefix to a replacement prefix.
// Rules are evaluated in declaration order; the first match wins and
// at most one rewrite is applied per request.
type RewriteRule struct {
	Prefix      string
	Replacement string
}

// Config is the proxy configuration. It is constructed once and
// read-only for the proxy's lifetime.
type Config struct {
	// BackendURL is the backend base URL, e.g. "http://127.0.0.1:3000/app".
	BackendURL string
	// Bypass, when set, excludes additional paths from bridging.
	Bypass BypassPredicate
	// Delegate obtains the backend's answer for a bridged request.
	Delegate Delegate
	// Assets configures HTML injection.
	Assets AssetConfig
	// Rewrites are applied before any other routing step.
	Rewrites []RewriteRule
	// FinalizeHTML, when set, runs over transformed HTML before it is
	// sent.
	FinalizeHTML HTMLFinalizer
	// LogLevel is the logging threshold.
	LogLevel Level
	// LogSink receives emitted messages; nil discards them.
	LogSink Sink
}
