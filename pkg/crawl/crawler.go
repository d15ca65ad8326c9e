package crawl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// Crawler walks seed sites breadth-first and collects downloadable files.
// A Crawler is safe for a single Run at a time.
type Crawler struct {
	opts     Options
	client   *http.Client
	prober   *Prober
	robots   *robotsGate
	progress ProgressFunc

	include []glob.Glob
	exclude []glob.Glob
	allowed map[string]struct{}
}

// New builds a Crawler. progress may be nil.
func New(opts Options, progress ProgressFunc) (*Crawler, error) {
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions().UserAgent
	}

	include, err := compileGlobs(opts.IncludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exclude, err := compileGlobs(opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	allowed := make(map[string]struct{}, len(opts.AllowedExts))
	for _, ext := range opts.AllowedExts {
		allowed[normalizeExtKey(ext)] = struct{}{}
	}

	client := &http.Client{Timeout: opts.Timeout}
	c := &Crawler{
		opts:     opts,
		client:   client,
		prober:   NewProber(client, opts.UserAgent),
		progress: progress,
		include:  include,
		exclude:  exclude,
		allowed:  allowed,
	}
	if opts.RespectRobots {
		c.robots = newRobotsGate(client, opts.UserAgent)
	}
	return c, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func normalizeExtKey(ext string) string {
	return "." + strings.ToLower(trimDot(ext))
}

func trimDot(ext string) string {
	for len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return ext
}

type pageTask struct {
	url   string
	depth int
	root  string // host the crawl is locked to when SameDomainOnly
}

type pageResult struct {
	task     pageTask
	links    []string
	nextPage string
}

// Run crawls the seeds and returns the discovered files. On context
// cancellation the hits found so far are returned along with ctx.Err().
func (c *Crawler) Run(ctx context.Context, seeds []string) ([]FileHit, error) {
	start := c.ExpandSeeds(ctx, seeds)
	if len(start) == 0 {
		return nil, fmt.Errorf("no valid seed URLs")
	}

	visited := make(map[string]struct{})
	seenFiles := make(map[string]struct{})
	var hits []FileHit
	pagesDone := 0

	level := make([]pageTask, 0, len(start))
	for _, u := range start {
		level = append(level, pageTask{url: u, depth: 0, root: Host(u)})
	}

	for len(level) > 0 {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		if pagesDone >= c.opts.MaxPages || len(hits) >= c.opts.MaxFiles {
			break
		}

		batch := level
		if remaining := c.opts.MaxPages - pagesDone; len(batch) > remaining {
			batch = batch[:remaining]
		}
		level = level[len(batch):]

		c.report(pagesDone, fmt.Sprintf("crawling depth=%d pages=%d/%d files=%d",
			batch[0].depth, pagesDone, c.opts.MaxPages, len(hits)))

		results := c.fetchLevel(ctx, batch, visited)
		pagesDone += len(results)

		var next []pageTask
		for _, res := range results {
			if err := ctx.Err(); err != nil {
				return hits, err
			}
			for _, link := range res.links {
				hit, follow := c.classify(ctx, res.task, link)
				if hit != nil {
					if _, dup := seenFiles[hit.URL]; !dup {
						seenFiles[hit.URL] = struct{}{}
						hits = append(hits, *hit)
						if len(hits) >= c.opts.MaxFiles {
							break
						}
					}
					continue
				}
				if follow && res.task.depth < c.opts.MaxDepth {
					if _, ok := visited[link]; !ok {
						next = append(next, pageTask{url: link, depth: res.task.depth + 1, root: res.task.root})
					}
				}
			}
			// Pagination links stay at the depth of the page they came
			// from, so a listing's later pages are reachable even at the
			// depth limit.
			if np := res.nextPage; np != "" && c.AllowURL(np) {
				if !c.opts.SameDomainOnly || Host(np) == res.task.root {
					if _, ok := visited[np]; !ok {
						next = append(next, pageTask{url: np, depth: res.task.depth, root: res.task.root})
					}
				}
			}
			if len(hits) >= c.opts.MaxFiles {
				break
			}
		}

		level = appendUnique(level, next)

		if len(hits) >= c.opts.MaxFiles {
			break
		}
		if c.opts.Delay > 0 && len(level) > 0 {
			select {
			case <-ctx.Done():
				return hits, ctx.Err()
			case <-time.After(c.opts.Delay):
			}
		}
	}

	if c.progress != nil {
		c.progress(Progress{Percent: 100, Message: fmt.Sprintf("done: pages=%d files=%d", pagesDone, len(hits))})
	}
	return hits, nil
}

// fetchLevel fetches one BFS level concurrently and returns the page
// results. Pages are marked visited whether or not they fetch cleanly.
func (c *Crawler) fetchLevel(ctx context.Context, batch []pageTask, visited map[string]struct{}) []pageResult {
	var mu sync.Mutex
	var results []pageResult

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for _, task := range batch {
		if _, ok := visited[task.url]; ok {
			continue
		}
		visited[task.url] = struct{}{}

		task := task
		g.Go(func() error {
			links, nextPage := c.fetchPage(gctx, task.url)
			mu.Lock()
			results = append(results, pageResult{task: task, links: links, nextPage: nextPage})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fetchPage downloads one page and extracts its links and pagination
// target. Non-HTML pages and fetch failures yield nothing.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string) ([]string, string) {
	if c.robots != nil && !c.robots.allowed(ctx, pageURL) {
		log.Debugf("robots.txt disallows %s", pageURL)
		return nil, ""
	}

	body, err := c.fetchHTML(ctx, pageURL)
	if err != nil || body == "" {
		return nil, ""
	}
	return ExtractLinks(pageURL, body), FindNextPage(pageURL, body)
}

func (c *Crawler) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debugf("fetch %s: %v", pageURL, err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return "", nil
	}
	return readBody(resp)
}

// classify decides what a link is: a file hit (possibly after probing),
// a page worth following, or noise.
func (c *Crawler) classify(ctx context.Context, task pageTask, link string) (*FileHit, bool) {
	if !c.AllowURL(link) {
		return nil, false
	}
	if c.opts.SameDomainOnly && Host(link) != task.root {
		return nil, false
	}

	ext := ExtByPath(link)
	filename := ""

	if ext == "" && c.opts.DeepDetectDownloads && LooksLikeDownloadEndpoint(link) {
		if probed := c.prober.Probe(ctx, link); probed != nil {
			ext = probed.Ext
			link = probed.FinalURL
			filename = probed.Filename
		}
	}

	if ext != "" && c.ExtAllowed(ext) {
		if filename == "" {
			filename = PathBasename(link)
		}
		if filename == "" {
			filename = link
		}
		return &FileHit{Name: filename, Ext: ext, URL: link, Source: task.url}, false
	}
	if ext != "" {
		// Recognized file type outside the allow-list: not worth following.
		return nil, false
	}
	return nil, true
}

// AllowURL applies the include/exclude glob patterns. Exclude wins.
func (c *Crawler) AllowURL(u string) bool {
	for _, g := range c.exclude {
		if g.Match(u) {
			return false
		}
	}
	if len(c.include) == 0 {
		return true
	}
	for _, g := range c.include {
		if g.Match(u) {
			return true
		}
	}
	return false
}

// ExtAllowed reports whether hits of this extension are wanted.
func (c *Crawler) ExtAllowed(ext string) bool {
	if len(c.allowed) == 0 {
		return true
	}
	_, ok := c.allowed[ext]
	return ok
}

// Prober exposes the crawler's endpoint prober so the JS-render mode can
// share its cache.
func (c *Crawler) Prober() *Prober {
	return c.prober
}

// Options returns the crawl options in effect.
func (c *Crawler) Options() Options {
	return c.opts
}

// ExpandSeeds validates the seeds and, when sitemap discovery is on,
// expands each seed's domain (once) with sitemap URLs. Order is kept and
// duplicates removed.
func (c *Crawler) ExpandSeeds(ctx context.Context, seeds []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(u string) {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}

	if !c.opts.UseSitemaps {
		for _, s := range seeds {
			if IsValidURL(s) {
				add(s)
			}
		}
		return out
	}

	seenDomains := make(map[string]struct{})
	for _, s := range seeds {
		if !IsValidURL(s) {
			continue
		}
		add(s)

		host := Host(s)
		if _, ok := seenDomains[host]; ok {
			continue
		}
		seenDomains[host] = struct{}{}

		var smURLs []string
		for _, sm := range DiscoverSitemaps(ctx, c.client, c.opts.UserAgent, s) {
			smURLs = append(smURLs, FetchSitemapURLs(ctx, c.client, c.opts.UserAgent, sm, c.opts.MaxSitemapURLs-len(smURLs))...)
			if len(smURLs) >= c.opts.MaxSitemapURLs {
				break
			}
		}
		for _, u := range smURLs {
			if c.opts.SameDomainOnly && Host(u) != host {
				continue
			}
			add(u)
		}
	}
	return out
}

func (c *Crawler) report(pagesDone int, msg string) {
	if c.progress == nil {
		return
	}
	pages := c.opts.MaxPages
	if pages < 1 {
		pages = 1
	}
	pct := pagesDone * 100 / pages
	if pct > 99 {
		pct = 99
	}
	c.progress(Progress{Percent: pct, Message: msg})
}
