// Package crawl implements the file discovery engine: breadth-first page
// crawling, link extraction, download-endpoint probing, and sitemap expansion.
package crawl

import (
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("crawl")

// DefaultFileExts is the set of extensions recognized as downloadable files
// when no explicit allow-list is configured.
var DefaultFileExts = []string{
	".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx", ".csv", ".txt", ".rtf",
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".mp4", ".mp3", ".wav", ".avi",
	".json", ".xml", ".zip", ".rar", ".7z",
}

// Options configures a crawl run.
type Options struct {
	// Delay is an optional pause between BFS levels.
	Delay time.Duration

	// Timeout bounds every individual HTTP request.
	Timeout time.Duration

	// MaxDepth is how many link hops away from a seed the crawler follows.
	// Depth 0 means only the seed pages themselves are fetched.
	MaxDepth int

	// MaxPages caps the total number of page fetches across all seeds.
	MaxPages int

	// MaxFiles caps the number of file hits returned.
	MaxFiles int

	// Workers is the number of concurrent page fetches per BFS level.
	Workers int

	// SameDomainOnly locks each seed's crawl to the seed's host.
	SameDomainOnly bool

	// DeepDetectDownloads probes extension-less URLs that look like
	// download endpoints (HEAD, then GET) to resolve the real file.
	DeepDetectDownloads bool

	// UseSitemaps expands each seed domain with URLs discovered from
	// robots.txt sitemap entries and the conventional sitemap locations.
	UseSitemaps bool

	// MaxSitemapURLs caps sitemap expansion per domain.
	MaxSitemapURLs int

	// RespectRobots gates page fetches on the host's robots.txt.
	// An unreachable robots.txt fails open.
	RespectRobots bool

	// UserAgent is sent on every request.
	UserAgent string

	// AllowedExts restricts hits to these extensions. Empty means any
	// extension from DefaultFileExts.
	AllowedExts []string

	// IncludePatterns and ExcludePatterns are glob patterns matched
	// against candidate URLs. Exclude wins over include.
	IncludePatterns []string
	ExcludePatterns []string
}

// DefaultOptions returns the crawl defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             20 * time.Second,
		MaxDepth:            2,
		MaxPages:            120,
		MaxFiles:            800,
		Workers:             12,
		SameDomainOnly:      true,
		DeepDetectDownloads: true,
		UseSitemaps:         true,
		MaxSitemapURLs:      2000,
		UserAgent:           "ScrapBee/3.0",
	}
}

// FileHit is a discovered downloadable file.
type FileHit struct {
	// Name is the best-known filename (from Content-Disposition or the URL path).
	Name string `json:"name"`

	// Ext is the lowercase extension including the dot.
	Ext string `json:"ext"`

	// URL is the direct (possibly probe-resolved) file URL.
	URL string `json:"url"`

	// Source is the page the link was found on.
	Source string `json:"source"`
}

// Progress reports crawl advancement to the caller.
type Progress struct {
	Percent int
	Message string
}

// ProgressFunc receives progress updates. It is called from the crawl
// goroutine and must not block.
type ProgressFunc func(Progress)
