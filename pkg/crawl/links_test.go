package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	const base = "https://example.com/resources/"

	tests := []struct {
		name    string
		html    string
		want    []string
		wantNot []string
	}{
		{
			name: "anchors resolved against base",
			html: `<html><body>
				<a href="report.pdf">Report</a>
				<a href="/downloads/data.xlsx">Data</a>
				<a href="https://other.com/x.csv">External</a>
			</body></html>`,
			want: []string{
				"https://example.com/resources/report.pdf",
				"https://example.com/downloads/data.xlsx",
				"https://other.com/x.csv",
			},
		},
		{
			name: "onclick location assignments",
			html: `<html><body>
				<button onclick="window.location='/files/a.zip'">Get</button>
				<a href="#" onclick="location.href = &quot;/files/b.pdf&quot;">Get B</a>
			</body></html>`,
			want: []string{
				"https://example.com/files/a.zip",
				"https://example.com/files/b.pdf",
			},
		},
		{
			name: "script body location assignment",
			html: `<html><head><script>
				if (ready) { document.location = "https://example.com/files/c.docx"; }
			</script></head><body></body></html>`,
			want: []string{"https://example.com/files/c.docx"},
		},
		{
			name: "media sources and stylesheets",
			html: `<html><body>
				<img src="/img/logo.png">
				<source src="/media/clip.mp4">
				<link href="/feed.xml">
			</body></html>`,
			want: []string{
				"https://example.com/img/logo.png",
				"https://example.com/media/clip.mp4",
				"https://example.com/feed.xml",
			},
		},
		{
			name: "noise dropped",
			html: `<html><body>
				<a href="mailto:team@example.com">Mail</a>
				<a href="javascript:void(0)">JS</a>
				<a href="#section">Anchor</a>
			</body></html>`,
			wantNot: []string{"mailto:team@example.com", "javascript:void(0)"},
		},
		{
			name: "duplicates collapsed",
			html: `<a href="/one.pdf">A</a><a href="/one.pdf">B</a>`,
			want: []string{"https://example.com/one.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLinks(base, tt.html)
			for _, want := range tt.want {
				assert.Contains(t, got, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, got, not)
			}
			seen := make(map[string]int)
			for _, u := range got {
				seen[u]++
				assert.LessOrEqual(t, seen[u], 1, "duplicate link %s", u)
			}
		})
	}
}

func TestFindNextPage(t *testing.T) {
	const base = "https://example.com/list"

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "rel next wins",
			html: `<a href="/p3">more</a><a rel="next" href="/p2">2</a>`,
			want: "https://example.com/p2",
		},
		{
			name: "text fallback",
			html: `<a href="/about">About</a><a href="/page/2">Next</a>`,
			want: "https://example.com/page/2",
		},
		{
			name: "load more text",
			html: `<a href="/older">Load more</a>`,
			want: "https://example.com/older",
		},
		{
			name: "no pagination",
			html: `<a href="/contact">Contact</a>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindNextPage(base, tt.html))
		})
	}
}
