package docscout

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeURL drops the fragment and trailing path slashes while keeping the
// query. Unparsable input is returned unchanged, so NormalizeURL is idempotent.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String()
}

// StripFragment removes the fragment from rawURL and leaves everything else
// untouched. Unparsable input is returned unchanged.
func StripFragment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// URLPath returns the path plus query of rawURL, "/" when the path is empty.
// Unparsable input is returned unchanged.
func URLPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

// HasFragment reports whether rawURL carries a fragment (including an empty
// one, as in "page#").
func HasFragment(rawURL string) bool {
	return strings.Contains(rawURL, "#")
}

// HasHTMLExtension reports whether the last path segment ends in .html or
// .htm, case-insensitively. Extensionless routes return false.
func HasHTMLExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// HostnameAllowed reports whether hostname equals allowed or is one of its
// subdomains. Parents and siblings are rejected.
func HostnameAllowed(hostname, allowed string) bool {
	hostname = strings.ToLower(hostname)
	allowed = strings.ToLower(allowed)
	return hostname == allowed || strings.HasSuffix(hostname, "."+allowed)
}

// PathAllowed reports whether p is inside prefix: an empty prefix allows
// everything, otherwise p must equal prefix or continue it with a "/".
// A trailing slash on prefix is ignored.
func PathAllowed(p, prefix string) bool {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
