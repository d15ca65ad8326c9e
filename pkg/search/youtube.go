package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultYouTubeURL = "https://www.googleapis.com/youtube/v3"

// Video holds the details returned for one YouTube video.
type Video struct {
	Title        string `json:"title"`
	PublishedAt  string `json:"published_at"`
	ViewCount    string `json:"view_count"`
	LikeCount    string `json:"like_count"`
	CommentCount string `json:"comment_count"`
	Duration     string `json:"duration"`
	Channel      string `json:"channel"`
	Description  string `json:"description"`
	URL          string `json:"url"`
}

// YouTubeClient talks to the YouTube Data API v3.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewYouTubeClient builds a client; the key is validated at call time.
func NewYouTubeClient(apiKey string, timeout time.Duration) *YouTubeClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &YouTubeClient{
		apiKey:  apiKey,
		baseURL: defaultYouTubeURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SearchVideos returns the video IDs matching query.
func (c *YouTubeClient) SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing YOUTUBE_API_KEY")
	}
	if maxResults < 1 {
		maxResults = 15
	}

	params := url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"video"},
		"maxResults": {fmt.Sprint(maxResults)},
		"key":        {c.apiKey},
	}

	var decoded struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/search", params, &decoded); err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range decoded.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// VideoDetails fetches snippet, statistics, and duration for the given IDs.
func (c *YouTubeClient) VideoDetails(ctx context.Context, videoIDs []string) ([]Video, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing YOUTUBE_API_KEY")
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	params := url.Values{
		"part": {"snippet,contentDetails,statistics"},
		"id":   {strings.Join(videoIDs, ",")},
		"key":  {c.apiKey},
	}

	var decoded struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				PublishedAt  string `json:"publishedAt"`
				ChannelTitle string `json:"channelTitle"`
				Description  string `json:"description"`
			} `json:"snippet"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
			Statistics struct {
				ViewCount    string `json:"viewCount"`
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/videos", params, &decoded); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		videos = append(videos, Video{
			Title:        item.Snippet.Title,
			PublishedAt:  item.Snippet.PublishedAt,
			ViewCount:    item.Statistics.ViewCount,
			LikeCount:    item.Statistics.LikeCount,
			CommentCount: item.Statistics.CommentCount,
			Duration:     item.ContentDetails.Duration,
			Channel:      item.Snippet.ChannelTitle,
			Description:  item.Snippet.Description,
			URL:          "https://www.youtube.com/watch?v=" + item.ID,
		})
	}
	return videos, nil
}

func (c *YouTubeClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube response decode failed: %w", err)
	}
	return nil
}
