package crawl

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsGate caches per-host robots.txt verdicts. An unreachable or
// unparsable robots.txt fails open.
type robotsGate struct {
	client *http.Client
	ua     string

	mu    sync.Mutex
	hosts map[string]*robotstxt.Group
}

func newRobotsGate(client *http.Client, ua string) *robotsGate {
	return &robotsGate{
		client: client,
		ua:     ua,
		hosts:  make(map[string]*robotstxt.Group),
	}
}

// allowed reports whether the host's robots.txt permits fetching pageURL.
func (g *robotsGate) allowed(ctx context.Context, pageURL string) bool {
	host := Host(pageURL)
	if host == "" {
		return false
	}

	g.mu.Lock()
	group, ok := g.hosts[host]
	g.mu.Unlock()

	if !ok {
		group = g.fetchGroup(ctx, pageURL)
		g.mu.Lock()
		g.hosts[host] = group
		g.mu.Unlock()
	}

	if group == nil {
		return true
	}
	return group.Test(pathOf(pageURL))
}

func (g *robotsGate) fetchGroup(ctx context.Context, pageURL string) *robotstxt.Group {
	root := DomainRoot(pageURL)
	if root == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.ua)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil
	}
	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, data)
	if err != nil {
		log.Debugf("robots.txt parse failed for %s: %v", root, err)
		return nil
	}
	return robots.FindGroup(g.ua)
}

func pathOf(u string) string {
	p := u
	if root := DomainRoot(u); root != "" && len(u) > len(root) {
		p = u[len(root):]
	} else if root != "" {
		p = "/"
	}
	return p
}
