package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/crawl"
	"github.com/scrapbee/scrapbee/pkg/download"
)

var fetchCmd = &cli.Command{
	Name:      "fetch",
	Usage:     "download file URLs into a single ZIP archive",
	ArgsUsage: "[url ...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "input",
			Usage: "file with URLs, one per line",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "ZIP path (default ScrapBee_Files_<timestamp>.zip)",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}

		urls := cctx.Args().Slice()
		if input := cctx.String("input"); input != "" {
			fromFile, err := readURLList(input)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}

		var valid []string
		for _, u := range urls {
			if crawl.IsValidURL(u) {
				valid = append(valid, u)
			} else {
				log.Warnf("skipping invalid URL %q", u)
			}
		}
		if len(valid) == 0 {
			return fmt.Errorf("no valid URLs to download")
		}

		ctx, cancel := signalContext(cctx.Context)
		defer cancel()

		zipper := download.NewZipper(download.Options{
			Timeout:   time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second,
			Delay:     cfg.DownloadDelay(),
			UserAgent: cfg.Crawl.UserAgent,
		}, func(p download.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %s", p.Percent, p.Message)
		})

		data, err := zipper.Download(ctx, valid)
		fmt.Fprintln(os.Stderr)
		if err != nil && len(data) == 0 {
			return err
		}

		output := cctx.String("output")
		if output == "" {
			output = fmt.Sprintf("ScrapBee_Files_%s.zip", time.Now().Format("20060102_150405"))
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes, %d urls)\n", output, len(data), len(valid))
		return nil
	},
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}
