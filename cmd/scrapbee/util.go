package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/config"
)

// loadConfig reads the config named by --config (or the default path).
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	return config.Load(cctx.String(FlagConfig))
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so a
// running crawl or download stops cleanly and returns partial results.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
