package crawl

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// jsURLPatterns match URL assignments inside inline JavaScript, the common
// way download buttons are wired on older CMS themes.
var jsURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)window\.location\s*=\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)location\.href\s*=\s*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)document\.location\s*=\s*['"]([^'"]+)['"]`),
}

// ExtractLinks collects every URL referenced by the document: anchors,
// onclick handlers, media sources, and raw location assignments found
// anywhere in the markup. Relative links are resolved against baseURL.
func ExtractLinks(baseURL, rawHTML string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(link string) {
		u := NormalizeURL(baseURL, link)
		if u == "" || !IsValidURL(u) {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err == nil {
		walkLinks(doc, add)
	}

	// Raw scan catches assignments living in <script> bodies.
	for _, pat := range jsURLPatterns {
		for _, m := range pat.FindAllStringSubmatch(rawHTML, -1) {
			add(m[1])
		}
	}

	return out
}

func walkLinks(n *html.Node, add func(string)) {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			switch strings.ToLower(attr.Key) {
			case "href":
				if tag := strings.ToLower(n.Data); tag == "a" || tag == "link" {
					add(attr.Val)
				}
			case "src":
				if tag := strings.ToLower(n.Data); tag == "img" || tag == "source" {
					add(attr.Val)
				}
			case "onclick":
				for _, pat := range jsURLPatterns {
					for _, m := range pat.FindAllStringSubmatch(attr.Val, -1) {
						add(m[1])
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkLinks(c, add)
	}
}

// nextPageTexts are anchor labels treated as pagination links when no
// rel="next" anchor exists.
var nextPageTexts = map[string]struct{}{
	"next": {}, "next ›": {}, "older": {}, "more": {}, "load more": {},
}

// FindNextPage returns the URL of the next pagination page, or "".
func FindNextPage(baseURL, rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var relNext, textNext string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if relNext != "" {
			return
		}
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "a" {
			var href, rel string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "href":
					href = attr.Val
				case "rel":
					rel = strings.ToLower(attr.Val)
				}
			}
			if href != "" {
				if rel == "next" {
					relNext = href
					return
				}
				if textNext == "" {
					txt := strings.ToLower(strings.TrimSpace(nodeText(n)))
					if _, ok := nextPageTexts[txt]; ok {
						textNext = href
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if relNext != "" {
		return NormalizeURL(baseURL, relNext)
	}
	if textNext != "" {
		return NormalizeURL(baseURL, textNext)
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
