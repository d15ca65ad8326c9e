package main

import (
	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/server"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP API (default listen 0.0.0.0:8501)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "listen address override",
		},
		&cli.BoolFlag{
			Name:  "browser",
			Usage: "enable JS-render crawls (starts a headless browser on demand)",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if listen := cctx.String("listen"); listen != "" {
			cfg.Server.ListenAddr = listen
		}
		if cctx.Bool("browser") {
			cfg.Server.EnableBrowser = true
		}

		ctx, cancel := signalContext(cctx.Context)
		defer cancel()

		return server.New(cfg).Start(ctx)
	},
}
