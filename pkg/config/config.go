// Package config holds the ScrapBee configuration: crawl defaults,
// search API keys, and the server listen address. Configuration lives in
// a TOML file under ~/.scrapbee with SCRAPBEE_* environment overrides.
package config

import (
	"time"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

// Config is the root configuration document.
type Config struct {
	Crawl    Crawl
	Search   Search
	Server   Server
	Download Download
}

// Crawl mirrors crawl.Options with file-friendly field types.
type Crawl struct {
	TimeoutSeconds      int
	DelaySeconds        float64
	MaxDepth            int
	MaxPages            int
	MaxFiles            int
	Workers             int
	SameDomainOnly      bool
	DeepDetectDownloads bool
	UseSitemaps         bool
	MaxSitemapURLs      int
	RespectRobots       bool
	UserAgent           string
	AllowedExts         []string
}

type Search struct {
	SerperAPIKey  string `envconfig:"SERPER_API_KEY"`
	YouTubeAPIKey string `envconfig:"YOUTUBE_API_KEY"`
}

type Server struct {
	ListenAddr string
	// EnableBrowser starts the headless browser so the API can serve
	// JS-render crawls.
	EnableBrowser bool
}

type Download struct {
	DelaySeconds float64
}

// Default returns the shipped configuration.
func Default() *Config {
	return &Config{
		Crawl: Crawl{
			TimeoutSeconds:      20,
			MaxDepth:            2,
			MaxPages:            120,
			MaxFiles:            800,
			Workers:             12,
			SameDomainOnly:      true,
			DeepDetectDownloads: true,
			UseSitemaps:         true,
			MaxSitemapURLs:      2000,
			UserAgent:           "ScrapBee/3.0",
			AllowedExts:         []string{".pdf", ".xlsx", ".xls", ".csv", ".docx", ".pptx", ".zip"},
		},
		Server: Server{
			ListenAddr: "0.0.0.0:8501",
		},
	}
}

// CrawlOptions converts the file representation into crawl.Options.
func (c *Config) CrawlOptions() crawl.Options {
	return crawl.Options{
		Delay:               time.Duration(c.Crawl.DelaySeconds * float64(time.Second)),
		Timeout:             time.Duration(c.Crawl.TimeoutSeconds) * time.Second,
		MaxDepth:            c.Crawl.MaxDepth,
		MaxPages:            c.Crawl.MaxPages,
		MaxFiles:            c.Crawl.MaxFiles,
		Workers:             c.Crawl.Workers,
		SameDomainOnly:      c.Crawl.SameDomainOnly,
		DeepDetectDownloads: c.Crawl.DeepDetectDownloads,
		UseSitemaps:         c.Crawl.UseSitemaps,
		MaxSitemapURLs:      c.Crawl.MaxSitemapURLs,
		RespectRobots:       c.Crawl.RespectRobots,
		UserAgent:           c.Crawl.UserAgent,
		AllowedExts:         c.Crawl.AllowedExts,
	}
}

// DownloadDelay returns the inter-download pause as a duration.
func (c *Config) DownloadDelay() time.Duration {
	return time.Duration(c.Download.DelaySeconds * float64(time.Second))
}
