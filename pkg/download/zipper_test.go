package download

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = string(content)
	}
	return entries
}

func TestZipperBundlesFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.pdf":
			fmt.Fprint(w, "pdf-bytes")
		case "/named":
			w.Header().Set("Content-Disposition", `attachment; filename="statistics.xlsx"`)
			fmt.Fprint(w, "xlsx-bytes")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	z := NewZipper(Options{Timeout: 5 * time.Second}, nil)
	data, err := z.Download(context.Background(), []string{
		srv.URL + "/a.pdf",
		srv.URL + "/named",
	})
	require.NoError(t, err)

	entries := readArchive(t, data)
	assert.Equal(t, "pdf-bytes", entries["a.pdf"])
	assert.Equal(t, "xlsx-bytes", entries["statistics.xlsx"])
}

func TestZipperSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.csv" {
			fmt.Fprint(w, "a,b\n1,2\n")
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	z := NewZipper(Options{Timeout: 5 * time.Second}, nil)
	data, err := z.Download(context.Background(), []string{
		srv.URL + "/broken.pdf",
		srv.URL + "/ok.csv",
	})
	require.NoError(t, err)

	entries := readArchive(t, data)
	require.Len(t, entries, 1)
	assert.Equal(t, "a,b\n1,2\n", entries["ok.csv"])
}

func TestZipperDeduplicatesNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "same-name")
	}))
	defer srv.Close()

	z := NewZipper(Options{Timeout: 5 * time.Second}, nil)
	data, err := z.Download(context.Background(), []string{
		srv.URL + "/dir1/report.pdf",
		srv.URL + "/dir2/report.pdf",
	})
	require.NoError(t, err)

	entries := readArchive(t, data)
	assert.Len(t, entries, 2)
	assert.Contains(t, entries, "report.pdf")
}

func TestZipperCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	z := NewZipper(Options{Timeout: time.Second}, nil)
	_, err := z.Download(ctx, []string{"http://127.0.0.1:1/never.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZipperProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "x")
	}))
	defer srv.Close()

	var updates []Progress
	z := NewZipper(Options{Timeout: 5 * time.Second}, func(p Progress) {
		updates = append(updates, p)
	})
	_, err := z.Download(context.Background(), []string{srv.URL + "/a.txt", srv.URL + "/b.txt"})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, 50, updates[0].Percent)
	assert.Equal(t, 100, updates[1].Percent)
}
