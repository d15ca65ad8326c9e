package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilenameFromContentDisposition(t *testing.T) {
	tests := []struct {
		name string
		cd   string
		want string
	}{
		{"quoted filename", `attachment; filename="report 2024.pdf"`, "report 2024.pdf"},
		{"bare filename", `attachment; filename=data.xlsx`, "data.xlsx"},
		{"rfc5987 encoded", `attachment; filename*=UTF-8''annual%20report.pdf`, "annual report.pdf"},
		{"inline disposition", `inline; filename="chart.png"`, "chart.png"},
		{"no filename", `attachment`, ""},
		{"empty header", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromContentDisposition(tt.cd))
		})
	}
}

func TestFileInfoFromHeaders(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		headers  http.Header
		wantName string
		wantExt  string
	}{
		{
			name: "disposition filename with known ext",
			url:  "https://example.com/download?file=9",
			headers: http.Header{
				"Content-Disposition": {`attachment; filename="stats.xlsx"`},
			},
			wantName: "stats.xlsx",
			wantExt:  ".xlsx",
		},
		{
			name: "content type map",
			url:  "https://example.com/download?file=9",
			headers: http.Header{
				"Content-Type": {"application/pdf"},
			},
			wantExt: ".pdf",
		},
		{
			name: "octet stream falls through to url path",
			url:  "https://example.com/files/archive.zip",
			headers: http.Header{
				"Content-Type": {"application/octet-stream"},
			},
			wantExt: ".zip",
		},
		{
			name:    "nothing recognizable",
			url:     "https://example.com/page",
			headers: http.Header{"Content-Type": {"text/html"}},
			wantExt: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ext := FileInfoFromHeaders(tt.url, tt.headers)
			assert.Equal(t, tt.wantExt, ext)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, name)
			}
		})
	}
}

func TestProberResolvesEndpoint(t *testing.T) {
	var headCalls, getCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			headCalls++
			w.Header().Set("Content-Disposition", `attachment; filename="yearbook.pdf"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			getCalls++
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	p := NewProber(srv.Client(), "ScrapBee/3.0")
	res := p.Probe(context.Background(), srv.URL+"/download?file=1")
	require.NotNil(t, res)
	assert.Equal(t, "yearbook.pdf", res.Filename)
	assert.Equal(t, ".pdf", res.Ext)
	assert.Equal(t, 1, headCalls)
	assert.Equal(t, 0, getCalls, "GET fallback should not fire when HEAD succeeds")

	// Second probe must come from the cache.
	_ = p.Probe(context.Background(), srv.URL+"/download?file=1")
	assert.Equal(t, 1, headCalls)
}

func TestProberGetFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(srv.Client(), "ScrapBee/3.0")
	res := p.Probe(context.Background(), srv.URL+"/export?download=1")
	require.NotNil(t, res)
	assert.Equal(t, ".csv", res.Ext)
}

func TestProberNegativeResultCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProber(srv.Client(), "ScrapBee/3.0")
	assert.Nil(t, p.Probe(context.Background(), srv.URL+"/download?file=missing"))
	first := calls
	assert.Nil(t, p.Probe(context.Background(), srv.URL+"/download?file=missing"))
	assert.Equal(t, first, calls, "negative probe should be cached")
}
