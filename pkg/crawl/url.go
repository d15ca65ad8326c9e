package crawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// IsValidURL reports whether u is an absolute http(s) URL with a host.
func IsValidURL(u string) bool {
	p, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return false
	}
	return (p.Scheme == "http" || p.Scheme == "https") && p.Host != ""
}

// NormalizeURL resolves link against base, dropping mailto:, javascript:
// and fragment-only links. Returns "" when the link is unusable.
func NormalizeURL(base, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(link, "#") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	l, err := url.Parse(link)
	if err != nil {
		return ""
	}
	resolved := b.ResolveReference(l)
	resolved.Fragment = ""
	return resolved.String()
}

// Host returns the lowercase host of u, or "" when unparsable.
func Host(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(p.Host)
}

// DomainRoot returns scheme://host for u.
func DomainRoot(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return p.Scheme + "://" + p.Host
}

// ExtByPath returns the recognized extension the URL path ends with,
// or "" when the path carries none.
func ExtByPath(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	lower := strings.ToLower(p.Path)
	for _, ext := range DefaultFileExts {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// PathBasename returns the final path segment of u, or "" for a bare root.
func PathBasename(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	base := path.Base(p.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

var unsafeFilenameRunes = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SafeFilename replaces runs of unsafe runes with underscores.
func SafeFilename(s string) string {
	return strings.Trim(unsafeFilenameRunes.ReplaceAllString(s, "_"), "_")
}

// LooksLikeDownloadEndpoint reports whether u resembles a file download
// endpoint despite carrying no recognizable extension. Category listing
// pages (dlm_download_category) are explicitly not files.
func LooksLikeDownloadEndpoint(u string) bool {
	p, err := url.Parse(u)
	if err != nil {
		return false
	}
	q := p.Query()
	if q.Has("dlm_download_category") {
		return false
	}
	if strings.Contains(strings.ToLower(p.Path), "/download/") {
		return true
	}
	for _, key := range []string{"download", "dlm_download", "attachment_id", "file"} {
		if q.Has(key) {
			return true
		}
	}
	return false
}
