package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scrapbee/scrapbee/pkg/crawl"
)

// CrawlJob is the YAML description of a repeatable crawl: seeds plus
// option overrides. Unset fields fall back to the configured defaults.
type CrawlJob struct {
	Seeds      []string `yaml:"seeds"`
	Mode       string   `yaml:"mode"` // "fast" or "render"
	Extensions []string `yaml:"extensions"`

	MaxDepth    *int     `yaml:"max_depth"`
	MaxPages    *int     `yaml:"max_pages"`
	MaxFiles    *int     `yaml:"max_files"`
	Workers     *int     `yaml:"workers"`
	SameDomain  *bool    `yaml:"same_domain"`
	UseSitemaps *bool    `yaml:"use_sitemaps"`
	Robots      *bool    `yaml:"respect_robots"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`

	Output string `yaml:"output"`
}

// loadCrawlJob reads and validates a job file.
func loadCrawlJob(path string) (*CrawlJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	job := &CrawlJob{}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}

	if len(job.Seeds) == 0 {
		return nil, fmt.Errorf("job file declares no seeds")
	}
	switch job.Mode {
	case "", "fast", "render":
	default:
		return nil, fmt.Errorf("unknown mode %q (want fast or render)", job.Mode)
	}
	return job, nil
}

// apply overlays the job's overrides onto opts.
func (j *CrawlJob) apply(opts crawl.Options) crawl.Options {
	if len(j.Extensions) > 0 {
		opts.AllowedExts = j.Extensions
	}
	if j.MaxDepth != nil {
		opts.MaxDepth = *j.MaxDepth
	}
	if j.MaxPages != nil {
		opts.MaxPages = *j.MaxPages
	}
	if j.MaxFiles != nil {
		opts.MaxFiles = *j.MaxFiles
	}
	if j.Workers != nil {
		opts.Workers = *j.Workers
	}
	if j.SameDomain != nil {
		opts.SameDomainOnly = *j.SameDomain
	}
	if j.UseSitemaps != nil {
		opts.UseSitemaps = *j.UseSitemaps
	}
	if j.Robots != nil {
		opts.RespectRobots = *j.Robots
	}
	if len(j.Include) > 0 {
		opts.IncludePatterns = j.Include
	}
	if len(j.Exclude) > 0 {
		opts.ExcludePatterns = j.Exclude
	}
	return opts
}
