// Package search implements the web search providers used to collect
// crawl seeds: Serper (Google results) and the YouTube Data API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("search")

const (
	defaultSerperURL = "https://google.serper.dev/search"

	// Serper caps a single page at 100 organic results; we cap a
	// paginated run at 300 total.
	serperPageSize   = 100
	serperMaxResults = 300
)

// Result is one organic search result.
type Result struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

// SerperClient talks to the Serper search API.
type SerperClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerperClient builds a client. The key is validated at call time so
// construction can happen before configuration is complete.
func NewSerperClient(apiKey string, timeout time.Duration) *SerperClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &SerperClient{
		apiKey:  apiKey,
		baseURL: defaultSerperURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type serperRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	Page int    `json:"page"`
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

// Search fetches up to total organic results for query, paging through
// the API 100 results at a time and de-duplicating by URL. It stops
// early when a page comes back empty or contributes no new URLs.
func (c *SerperClient) Search(ctx context.Context, query string, total int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing SERPER_API_KEY")
	}

	if total < 1 {
		total = 1
	}
	if total > serperMaxResults {
		total = serperMaxResults
	}

	seen := make(map[string]struct{})
	var results []Result

	for page := 1; len(results) < total; page++ {
		batch := total - len(results)
		if batch > serperPageSize {
			batch = serperPageSize
		}

		organic, err := c.searchPage(ctx, query, batch, page)
		if err != nil {
			return nil, err
		}
		if len(organic) == 0 {
			break
		}

		added := 0
		for _, item := range organic {
			if _, dup := seen[item.Link]; dup {
				continue
			}
			seen[item.Link] = struct{}{}
			added++
			results = append(results, Result{
				Title:    item.Title,
				URL:      item.Link,
				Snippet:  item.Snippet,
				Position: len(results) + 1,
			})
			if len(results) >= total {
				break
			}
		}
		// Past its last page the API replays earlier results instead of
		// going empty; a page that adds nothing new ends the run.
		if added == 0 {
			break
		}
	}

	log.Debugf("serper query %q returned %d results", query, len(results))
	return results, nil
}

func (c *SerperClient) searchPage(ctx context.Context, query string, num, page int) ([]serperOrganic, error) {
	payload, err := json.Marshal(serperRequest{Q: query, Num: num, Page: page})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("serper response decode failed: %w", err)
	}
	return decoded.Organic, nil
}
