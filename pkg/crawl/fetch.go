package crawl

import (
	"io"
	"net/http"
	"strings"
)

const maxPageBody = 8 << 20

func isHTMLContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "text/html")
}

func readBody(resp *http.Response) (string, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// appendUnique appends tasks from next whose URL is not already queued.
func appendUnique(level, next []pageTask) []pageTask {
	queued := make(map[string]struct{}, len(level))
	for _, t := range level {
		queued[t.url] = struct{}{}
	}
	for _, t := range next {
		if _, ok := queued[t.url]; ok {
			continue
		}
		queued[t.url] = struct{}{}
		level = append(level, t)
	}
	return level
}
