package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v2"

	"github.com/scrapbee/scrapbee/pkg/config"
)

var configCmd = &cli.Command{
	Name:  "config",
	Usage: "manage the scrapbee configuration",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "write a commented default config file",
			Action: func(cctx *cli.Context) error {
				path := cctx.String(FlagConfig)
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				if path == "" {
					path, _ = config.DefaultPath()
				}
				fmt.Printf("wrote %s\n", path)
				return nil
			},
		},
		{
			Name:  "show",
			Usage: "print the effective configuration",
			Action: func(cctx *cli.Context) error {
				cfg, err := loadConfig(cctx)
				if err != nil {
					return err
				}
				return toml.NewEncoder(os.Stdout).Encode(cfg)
			},
		},
	},
}
