package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0:8501", cfg.Server.ListenAddr)
	assert.Equal(t, 20, cfg.Crawl.TimeoutSeconds)
	assert.Equal(t, 12, cfg.Crawl.Workers)
	assert.True(t, cfg.Crawl.SameDomainOnly)
	assert.Contains(t, cfg.Crawl.AllowedExts, ".pdf")
}

func TestFromReader(t *testing.T) {
	doc := `
[Crawl]
MaxDepth = 5
Workers = 4
UserAgent = "TestBee/1.0"

[Server]
ListenAddr = "127.0.0.1:9000"

[Search]
SerperAPIKey = "from-file"
`
	cfg, err := FromReader(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Crawl.MaxDepth)
	assert.Equal(t, 4, cfg.Crawl.Workers)
	assert.Equal(t, "TestBee/1.0", cfg.Crawl.UserAgent)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, "from-file", cfg.Search.SerperAPIKey)

	// Unset fields keep their defaults.
	assert.Equal(t, 120, cfg.Crawl.MaxPages)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERPER_API_KEY", "from-env")
	t.Setenv("YOUTUBE_API_KEY", "yt-from-env")

	cfg, err := FromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Search.SerperAPIKey)
	assert.Equal(t, "yt-from-env", cfg.Search.YouTubeAPIKey)
}

func TestCrawlOptions(t *testing.T) {
	cfg := Default()
	cfg.Crawl.TimeoutSeconds = 7
	cfg.Crawl.DelaySeconds = 0.5

	opts := cfg.CrawlOptions()
	assert.Equal(t, 7*time.Second, opts.Timeout)
	assert.Equal(t, 500*time.Millisecond, opts.Delay)
	assert.Equal(t, cfg.Crawl.MaxPages, opts.MaxPages)
	assert.Equal(t, cfg.Crawl.AllowedExts, opts.AllowedExts)
}

func TestCommentedDefault(t *testing.T) {
	data, err := CommentedDefault()
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "[Crawl]")
	assert.Contains(t, text, "[Server]")

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "[") {
			continue
		}
		assert.True(t, strings.HasPrefix(trimmed, "#"), "value line should be commented: %q", line)
	}
}
