package bridgelib

import (
	"net/url"
	"strings"
)

// StripTrailingSlash removes every trailing "/" from s.
func StripTrailingSlash(s string) string {
	return strings.TrimRight(s, "/")
}

// StripLeadingSlash removes every leading "/" from s.
func StripLeadingSlash(s string) string {
	return strings.TrimLeft(s, "/")
}

// EnsureLeadingSlash returns s with exactly one leading "/".
func EnsureLeadingSlash(s string) string {
	return "/" + StripLeadingSlash(s)
}

// JoinURL joins base and path with exactly one separating slash,
// regardless of existing slashes on either side.
func JoinURL(base, path string) string {
	return StripTrailingSlash(base) + EnsureLeadingSlash(path)
}

// NormalizeRedirect rewrites a backend redirect location into a path
// valid under the dev-server root. A fully qualified URL is reduced to
// its path, query and fragment; the backend's own mount prefix (base)
// is stripped; the result has exactly one leading slash.
func NormalizeRedirect(location, base string) string {
	if u, err := url.Parse(location); err == nil && u.Host != "" {
		location = u.RequestURI()
		if u.Fragment != "" {
			location += "#" + u.Fragment
		}
	}
	location = strings.TrimPrefix(location, base)
	return EnsureLeadingSlash(location)
}
