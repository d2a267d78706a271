package helpers

import (
	"net/url"
	"strings"
)

// ResolveURL joins a detail reference onto the site's base domain.
// Absolute references are returned unchanged and protocol-relative ones
// ("//host/path") inherit the base domain's scheme.
func ResolveURL(baseDomain, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}

	if strings.HasPrefix(ref, "//") {
		scheme := "https"
		if u, err := url.Parse(baseDomain); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + ref
	}

	return JoinURL(baseDomain, ref)
}

// JoinURL appends path to base with exactly one "/" between them. A query
// or fragment suffix is appended as is. No other slash is removed.
func JoinURL(base, path string) string {
	if base == "" || path == "" || strings.HasPrefix(path, "?") || strings.HasPrefix(path, "#") {
		return base + path
	}

	baseSlash := strings.HasSuffix(base, "/")
	pathSlash := strings.HasPrefix(path, "/")
	switch {
	case baseSlash && pathSlash:
		return base + path[1:]
	case !baseSlash && !pathSlash:
		return base + "/" + path
	default:
		return base + path
	}
}
