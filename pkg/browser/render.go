package browser

import (
	"context"
	"fmt"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

// RenderCrawler discovers files the way the fast crawler does, but loads
// every page in the headless browser first. Pages are visited one at a
// time; endpoint probing still goes over plain HTTP.
type RenderCrawler struct {
	manager  *Manager
	inner    *crawl.Crawler
	progress crawl.ProgressFunc
}

// NewRenderCrawler wires a render crawler over an already started
// Manager. progress may be nil.
func NewRenderCrawler(manager *Manager, opts crawl.Options, progress crawl.ProgressFunc) (*RenderCrawler, error) {
	inner, err := crawl.New(opts, nil)
	if err != nil {
		return nil, err
	}
	return &RenderCrawler{manager: manager, inner: inner, progress: progress}, nil
}

// Run renders each (sitemap-expanded) seed and collects file hits from
// the rendered anchors. On cancellation the hits found so far are
// returned with ctx.Err().
func (r *RenderCrawler) Run(ctx context.Context, seeds []string) ([]crawl.FileHit, error) {
	opts := r.inner.Options()

	pages := r.inner.ExpandSeeds(ctx, seeds)
	if len(pages) == 0 {
		return nil, fmt.Errorf("no valid seed URLs")
	}

	session, err := r.manager.NewSession(opts.UserAgent, opts.Timeout)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	prober := r.inner.Prober()
	seen := make(map[string]struct{})
	var hits []crawl.FileHit
	visited := 0

	for _, pageURL := range pages {
		if err := ctx.Err(); err != nil {
			return hits, err
		}
		if visited >= opts.MaxPages || len(hits) >= opts.MaxFiles {
			break
		}
		visited++
		r.report(visited, len(hits), opts)

		if err := session.Navigate(pageURL); err != nil {
			log.Debugf("render %s: %v", pageURL, err)
			continue
		}
		hrefs, err := session.Hrefs()
		if err != nil {
			log.Debugf("hrefs %s: %v", pageURL, err)
			continue
		}

		root := crawl.Host(pageURL)
		for _, link := range hrefs {
			if !crawl.IsValidURL(link) || !r.inner.AllowURL(link) {
				continue
			}
			if opts.SameDomainOnly && crawl.Host(link) != root {
				continue
			}

			ext := crawl.ExtByPath(link)
			filename := ""
			if ext == "" && opts.DeepDetectDownloads && crawl.LooksLikeDownloadEndpoint(link) {
				if probed := prober.Probe(ctx, link); probed != nil {
					ext = probed.Ext
					link = probed.FinalURL
					filename = probed.Filename
				}
			}
			if ext == "" || !r.inner.ExtAllowed(ext) {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}

			if filename == "" {
				filename = crawl.PathBasename(link)
			}
			if filename == "" {
				filename = link
			}
			hits = append(hits, crawl.FileHit{Name: filename, Ext: ext, URL: link, Source: pageURL})
			if len(hits) >= opts.MaxFiles {
				break
			}
		}
	}

	if r.progress != nil {
		r.progress(crawl.Progress{Percent: 100, Message: fmt.Sprintf("done: pages=%d files=%d", visited, len(hits))})
	}
	return hits, nil
}

func (r *RenderCrawler) report(visited, files int, opts crawl.Options) {
	if r.progress == nil {
		return
	}
	pages := opts.MaxPages
	if pages < 1 {
		pages = 1
	}
	pct := visited * 100 / pages
	if pct > 99 {
		pct = 99
	}
	r.progress(crawl.Progress{
		Percent: pct,
		Message: fmt.Sprintf("rendering %d/%d files=%d", visited, opts.MaxPages, files),
	})
}
