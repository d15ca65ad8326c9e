package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapbee/scrapbee/pkg/config"
	"github.com/scrapbee/scrapbee/pkg/crawl"
)

func testServer() *Server {
	cfg := config.Default()
	cfg.Crawl.TimeoutSeconds = 5
	cfg.Crawl.UseSitemaps = false
	return New(cfg)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestSearchRequiresQuery(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/search", map[string]interface{}{"limit": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrawlRequiresURLs(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/crawl", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrawlRejectsUnknownMode(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/crawl", map[string]interface{}{
		"urls": []string{"https://example.com"},
		"mode": "warp",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrawlRenderWithoutBrowser(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/crawl", map[string]interface{}{
		"urls": []string{"https://example.com"},
		"mode": "render",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCrawlFastMode(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/files/report.pdf">R</a></body></html>`)
	}))
	defer site.Close()

	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/crawl", map[string]interface{}{
		"urls":         []string{site.URL + "/"},
		"extensions":   []string{".pdf"},
		"use_sitemaps": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		JobID string          `json:"job_id"`
		Count int             `json:"count"`
		Files []crawl.FileHit `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, site.URL+"/files/report.pdf", resp.Files[0].URL)
}

func TestDownloadReturnsZip(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "file-content")
	}))
	defer site.Close()

	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/download", map[string]interface{}{
		"urls": []string{site.URL + "/doc.pdf"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Header().Get("Content-Disposition"), "ScrapBee_Files_"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "doc.pdf", zr.File[0].Name)
}

func TestDownloadRequiresURLs(t *testing.T) {
	s := testServer()
	rec := doJSON(t, s, http.MethodPost, "/api/download", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
