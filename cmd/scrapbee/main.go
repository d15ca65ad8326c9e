// Package main provides the scrapbee CLI: search the web for crawl
// seeds, discover downloadable files on sites, bundle selections into a
// ZIP, and serve the same workflow over HTTP.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("cli")

const (
	version = "3.0.0"

	FlagConfig      = "config"
	FlagVeryVerbose = "vv"
)

var subsystems = []string{"cli", "crawl", "browser", "search", "download", "export", "server"}

func before(cctx *cli.Context) error {
	level := "INFO"
	if cctx.Bool(FlagVeryVerbose) {
		level = "DEBUG"
	}
	for _, name := range subsystems {
		_ = logging.SetLogLevel(name, level)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:    "scrapbee",
		Usage:   "universal web file finder",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagConfig,
				Usage:   "config file path",
				EnvVars: []string{"SCRAPBEE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  FlagVeryVerbose,
				Usage: "enable debug logging",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			searchCmd,
			crawlCmd,
			fetchCmd,
			serveCmd,
			configCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
