package crawl

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// contentTypeExts maps download content types to extensions. Octet-stream
// is deliberately absent: it says nothing about the file.
var contentTypeExts = map[string]string{
	"application/pdf":          ".pdf",
	"application/vnd.ms-excel": ".xls",
	"text/csv":                 ".csv",
	"application/zip":          ".zip",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// ProbeResult describes a confirmed downloadable file behind an
// extension-less URL.
type ProbeResult struct {
	FinalURL string
	Filename string
	Ext      string
}

const probeCacheSize = 4096

// Prober resolves suspected download endpoints into concrete files by
// issuing a HEAD request and falling back to GET. Results, including
// negative ones, are cached per URL.
type Prober struct {
	client *http.Client
	ua     string
	cache  *lru.Cache[string, *ProbeResult]
}

// NewProber creates a prober sharing the crawler's HTTP client.
func NewProber(client *http.Client, userAgent string) *Prober {
	cache, _ := lru.New[string, *ProbeResult](probeCacheSize)
	return &Prober{client: client, ua: userAgent, cache: cache}
}

// Probe returns the resolved file behind u, or nil when u does not serve
// a recognizable file. A nil result is cached as well.
func (p *Prober) Probe(ctx context.Context, u string) *ProbeResult {
	if res, ok := p.cache.Get(u); ok {
		return res
	}
	res := p.probe(ctx, u)
	p.cache.Add(u, res)
	return res
}

func (p *Prober) probe(ctx context.Context, u string) *ProbeResult {
	if res := p.request(ctx, http.MethodHead, u); res != nil {
		return res
	}
	return p.request(ctx, http.MethodGet, u)
}

func (p *Prober) request(ctx context.Context, method, u string) *ProbeResult {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", p.ua)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil
	}
	defer func() {
		// Drain a little so the connection can be reused, then close.
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return nil
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	filename, ext := FileInfoFromHeaders(finalURL, resp.Header)
	if ext == "" {
		return nil
	}
	if filename == "" {
		filename = PathBasename(finalURL)
	}
	if filename == "" {
		filename = finalURL
	}
	return &ProbeResult{FinalURL: finalURL, Filename: filename, Ext: ext}
}

// FileInfoFromHeaders derives a filename and extension from the response
// headers, preferring Content-Disposition, then the content type, then
// the URL path.
func FileInfoFromHeaders(finalURL string, header http.Header) (filename, ext string) {
	filename = FilenameFromContentDisposition(header.Get("Content-Disposition"))
	if filename != "" {
		e := strings.ToLower(filepath.Ext(filename))
		for _, known := range DefaultFileExts {
			if e == known {
				return filename, e
			}
		}
	}

	ct := strings.ToLower(header.Get("Content-Type"))
	for k, v := range contentTypeExts {
		if strings.Contains(ct, k) {
			return filename, v
		}
	}

	return filename, ExtByPath(finalURL)
}

// FilenameFromContentDisposition parses the filename out of a
// Content-Disposition header. Handles both the plain filename parameter
// and the RFC 5987 filename* form.
func FilenameFromContentDisposition(cd string) string {
	if cd == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(cd); err == nil {
		// mime.ParseMediaType already decodes filename* into "filename".
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return strings.Trim(name, `"'`)
		}
	}
	// Tolerate malformed headers some CMS download plugins emit.
	for _, part := range strings.Split(cd, ";") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(strings.ToLower(part), "filename=") {
			return strings.Trim(part[len("filename="):], `"' `)
		}
	}
	return ""
}
