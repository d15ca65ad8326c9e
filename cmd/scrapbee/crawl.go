package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/browser"
	"github.com/scrapbee/scrapbee/pkg/crawl"
	"github.com/scrapbee/scrapbee/pkg/export"
)

var crawlCmd = &cli.Command{
	Name:      "crawl",
	Usage:     "crawl sites and discover downloadable files",
	ArgsUsage: "[url ...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "job",
			Usage: "YAML job file with seeds and option overrides",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "crawl mode: fast (concurrent HTTP) or render (headless browser)",
			Value: "fast",
		},
		&cli.StringSliceFlag{
			Name:  "ext",
			Usage: "file extensions to collect (repeatable), e.g. --ext .pdf --ext .xlsx",
		},
		&cli.IntFlag{Name: "depth", Usage: "max link depth", Value: -1},
		&cli.IntFlag{Name: "pages", Usage: "max pages to fetch", Value: -1},
		&cli.IntFlag{Name: "files", Usage: "max files to collect", Value: -1},
		&cli.BoolFlag{Name: "all-domains", Usage: "follow links off the seed domains"},
		&cli.BoolFlag{Name: "no-sitemaps", Usage: "skip sitemap discovery"},
		&cli.StringFlag{
			Name:  "output",
			Usage: "write hits to a file (.csv, .json, .xlsx, .db)",
		},
	},
	Action: runCrawl,
}

func runCrawl(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return err
	}

	seeds := cctx.Args().Slice()
	mode := cctx.String("mode")
	output := cctx.String("output")
	opts := cfg.CrawlOptions()

	if jobPath := cctx.String("job"); jobPath != "" {
		job, err := loadCrawlJob(jobPath)
		if err != nil {
			return err
		}
		seeds = append(job.Seeds, seeds...)
		opts = job.apply(opts)
		if job.Mode != "" {
			mode = job.Mode
		}
		if output == "" {
			output = job.Output
		}
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed URLs given (pass them as arguments or via --job)")
	}

	if exts := cctx.StringSlice("ext"); len(exts) > 0 {
		opts.AllowedExts = exts
	}
	if d := cctx.Int("depth"); d >= 0 {
		opts.MaxDepth = d
	}
	if p := cctx.Int("pages"); p >= 0 {
		opts.MaxPages = p
	}
	if f := cctx.Int("files"); f >= 0 {
		opts.MaxFiles = f
	}
	if cctx.Bool("all-domains") {
		opts.SameDomainOnly = false
	}
	if cctx.Bool("no-sitemaps") {
		opts.UseSitemaps = false
	}

	ctx, cancel := signalContext(cctx.Context)
	defer cancel()

	progress := func(p crawl.Progress) {
		fmt.Fprintf(os.Stderr, "\r[%3d%%] %s", p.Percent, p.Message)
	}

	var hits []crawl.FileHit
	switch mode {
	case "fast":
		crawler, err := crawl.New(opts, progress)
		if err != nil {
			return err
		}
		hits, err = crawler.Run(ctx, seeds)
		if err != nil && ctx.Err() == nil {
			return err
		}
	case "render":
		manager := browser.NewManager()
		if err := manager.Start(); err != nil {
			return err
		}
		defer manager.Stop()

		rc, err := browser.NewRenderCrawler(manager, opts, progress)
		if err != nil {
			return err
		}
		hits, err = rc.Run(ctx, seeds)
		if err != nil && ctx.Err() == nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %q (want fast or render)", mode)
	}
	fmt.Fprintln(os.Stderr)

	if ctx.Err() != nil {
		log.Warnf("crawl interrupted, %d files found so far", len(hits))
	}

	if output != "" {
		return export.WriteFile(output, "files", export.FromHits(hits))
	}
	for _, h := range hits {
		fmt.Printf("%-8s %s\n         found on %s\n", h.Ext, h.URL, h.Source)
	}
	fmt.Printf("\n%d files\n", len(hits))
	return nil
}
