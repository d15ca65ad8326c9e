package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/export"
	"github.com/scrapbee/scrapbee/pkg/search"
)

var searchCmd = &cli.Command{
	Name:      "search",
	Usage:     "search the web for candidate sites and pages",
	ArgsUsage: "<query>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "number of results to fetch (max 300)",
			Value: 30,
		},
		&cli.BoolFlag{
			Name:  "youtube",
			Usage: "search YouTube videos instead of the web",
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "write results to a file (.csv, .json, .xlsx, .db)",
		},
	},
	Action: func(cctx *cli.Context) error {
		query := cctx.Args().First()
		if query == "" {
			return fmt.Errorf("a search query is required")
		}

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext(cctx.Context)
		defer cancel()

		timeout := time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second

		if cctx.Bool("youtube") {
			client := search.NewYouTubeClient(cfg.Search.YouTubeAPIKey, timeout)
			ids, err := client.SearchVideos(ctx, query, cctx.Int("limit"))
			if err != nil {
				return err
			}
			videos, err := client.VideoDetails(ctx, ids)
			if err != nil {
				return err
			}
			return writeVideos(cctx.String("output"), query, videos)
		}

		client := search.NewSerperClient(cfg.Search.SerperAPIKey, timeout)
		results, err := client.Search(ctx, query, cctx.Int("limit"))
		if err != nil {
			return err
		}
		return writeResults(cctx.String("output"), query, results)
	},
}

func writeResults(output, query string, results []search.Result) error {
	t := export.Table{Columns: []string{"Position", "Title", "URL", "Snippet"}}
	for _, r := range results {
		t.Rows = append(t.Rows, map[string]string{
			"Position": fmt.Sprint(r.Position),
			"Title":    r.Title,
			"URL":      r.URL,
			"Snippet":  r.Snippet,
		})
	}
	if output != "" {
		return export.WriteFile(output, query, t)
	}
	for _, r := range results {
		fmt.Printf("%3d  %s\n     %s\n", r.Position, r.Title, r.URL)
	}
	fmt.Printf("\n%d results\n", len(results))
	return nil
}

func writeVideos(output, query string, videos []search.Video) error {
	t := export.Table{Columns: []string{"Title", "Channel", "Views", "Duration", "URL"}}
	for _, v := range videos {
		t.Rows = append(t.Rows, map[string]string{
			"Title":    v.Title,
			"Channel":  v.Channel,
			"Views":    v.ViewCount,
			"Duration": v.Duration,
			"URL":      v.URL,
		})
	}
	if output != "" {
		return export.WriteFile(output, query, t)
	}
	for _, v := range videos {
		fmt.Printf("%s | %s (%s views)\n     %s\n", v.Title, v.Channel, v.ViewCount, v.URL)
	}
	fmt.Printf("\n%d videos\n", len(videos))
	return nil
}
