package crawl

import (
	"bufio"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
)

const maxSitemapBody = 16 << 20

// DiscoverSitemaps returns candidate sitemap URLs for the domain of
// startURL: every Sitemap entry in robots.txt plus the two conventional
// locations.
func DiscoverSitemaps(ctx context.Context, client *http.Client, ua, startURL string) []string {
	root := DomainRoot(startURL)
	if root == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var sitemaps []string
	add := func(u string) {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			sitemaps = append(sitemaps, u)
		}
	}

	if body, err := fetchBody(ctx, client, ua, root+"/robots.txt"); err == nil {
		scanner := bufio.NewScanner(strings.NewReader(body))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if len(line) < len("sitemap:") || !strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
				continue
			}
			if sm := strings.TrimSpace(line[len("sitemap:"):]); sm != "" {
				add(sm)
			}
		}
	}

	add(root + "/sitemap.xml")
	add(root + "/sitemap_index.xml")
	return sitemaps
}

// FetchSitemapURLs downloads a sitemap and returns the page URLs it
// lists, up to maxURLs. A sitemap index (two or more .xml children) is
// expanded recursively.
func FetchSitemapURLs(ctx context.Context, client *http.Client, ua, sitemapURL string, maxURLs int) []string {
	if maxURLs <= 0 {
		return nil
	}
	body, err := fetchBody(ctx, client, ua, sitemapURL)
	if err != nil || body == "" {
		return nil
	}

	candidates := parseSitemapLocs(body)

	var children []string
	for _, c := range candidates {
		if strings.HasSuffix(strings.ToLower(c), ".xml") {
			children = append(children, c)
		}
	}
	if len(children) >= 2 {
		var out []string
		for _, child := range children {
			out = append(out, FetchSitemapURLs(ctx, client, ua, child, maxURLs-len(out))...)
			if len(out) >= maxURLs {
				break
			}
		}
		if len(out) > maxURLs {
			out = out[:maxURLs]
		}
		return out
	}

	if len(candidates) > maxURLs {
		candidates = candidates[:maxURLs]
	}
	return candidates
}

// parseSitemapLocs pulls every <loc> value out of a sitemap document,
// ignoring namespaces.
func parseSitemapLocs(body string) []string {
	dec := xml.NewDecoder(strings.NewReader(strings.TrimSpace(body)))
	var urls []string
	var inLoc bool
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inLoc = strings.EqualFold(t.Name.Local, "loc")
		case xml.EndElement:
			inLoc = false
		case xml.CharData:
			if inLoc {
				if u := strings.TrimSpace(string(t)); u != "" {
					urls = append(urls, u)
				}
			}
		}
	}
	return urls
}

func fetchBody(ctx context.Context, client *http.Client, ua, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", io.EOF
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBody))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
