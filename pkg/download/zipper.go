// Package download fetches selected file URLs and bundles them into a
// single in-memory ZIP archive.
package download

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

var log = logging.Logger("download")

const maxFileSize = 512 << 20

// Options configures a Zipper.
type Options struct {
	Timeout   time.Duration
	Delay     time.Duration
	UserAgent string
}

// Progress reports per-file advancement.
type Progress struct {
	Percent int
	Message string
}

// ProgressFunc receives progress updates; it must not block.
type ProgressFunc func(Progress)

// Zipper downloads file URLs into a ZIP archive. Failed downloads are
// logged and skipped rather than aborting the bundle.
type Zipper struct {
	client   *http.Client
	opts     Options
	progress ProgressFunc
}

// NewZipper builds a Zipper. progress may be nil.
func NewZipper(opts Options, progress ProgressFunc) *Zipper {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = crawl.DefaultOptions().UserAgent
	}
	return &Zipper{
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		progress: progress,
	}
}

// Download fetches every URL and returns the deflate-compressed archive.
// Cancellation stops between files and returns what was bundled so far.
func (z *Zipper) Download(ctx context.Context, urls []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	names := make(map[string]struct{})
	total := len(urls)

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		z.report(i+1, total)

		if err := z.addFile(ctx, zw, u, names); err != nil {
			log.Warnf("download failed: %s: %v", u, err)
			continue
		}

		if z.opts.Delay > 0 && i < total-1 {
			select {
			case <-ctx.Done():
			case <-time.After(z.opts.Delay):
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), ctx.Err()
}

func (z *Zipper) addFile(ctx context.Context, zw *zip.Writer, u string, names map[string]struct{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", z.opts.UserAgent)

	resp, err := z.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	name := entryName(u, resp.Header.Get("Content-Disposition"), names)
	names[name] = struct{}{}

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxFileSize)); err != nil {
		return err
	}
	return nil
}

// entryName picks an archive entry name from the Content-Disposition
// header or the URL path, suffixing duplicates with a timestamp.
func entryName(u, contentDisposition string, taken map[string]struct{}) string {
	name := crawl.FilenameFromContentDisposition(contentDisposition)
	if name == "" {
		name = crawl.PathBasename(u)
	}
	if name == "" {
		name = fmt.Sprintf("file_%d", time.Now().Unix())
	}
	name = path.Base(name) // never let a header smuggle in directories

	if _, dup := taken[name]; dup {
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		name = fmt.Sprintf("%s_%d%s", base, time.Now().UnixNano(), ext)
	}
	return name
}

func (z *Zipper) report(done, total int) {
	if z.progress == nil {
		return
	}
	if total < 1 {
		total = 1
	}
	z.progress(Progress{
		Percent: done * 100 / total,
		Message: fmt.Sprintf("downloading %d/%d", done, total),
	})
}
