package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/scanner"
)

const (
	youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"
	youtubeWatchURL  = "https://www.youtube.com/watch?v="

	defaultPerQuery = 15
)

// YouTubeCollector searches recent Korean video uploads for entity
// mentions via the Data API.
type YouTubeCollector struct {
	apiKey string
	http   *http.Client
}

// NewYouTubeCollector wires the API key; an empty key makes every
// Collect call fail, which the source layer records and skips past.
func NewYouTubeCollector(apiKey string, client *http.Client) *YouTubeCollector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &YouTubeCollector{apiKey: apiKey, http: client}
}

// Name identifies the strategy inside the registry.
func (c *YouTubeCollector) Name() string { return domain.SourceVideo }

// Source is the tag stamped on produced rows.
func (c *YouTubeCollector) Source() string { return domain.SourceVideo }

// Collect runs each query against the search endpoint, bounded to
// uploads inside the recency window.
func (c *YouTubeCollector) Collect(ctx context.Context, req scanner.Request) ([]domain.RawRow, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("youtube api key missing")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPerQuery
	}
	publishedAfter := time.Now().UTC().Add(-req.Window).Format(time.RFC3339)
	cutoff := time.Now().Add(-req.Window)

	var rows []domain.RawRow
	for i, q := range req.Queries {
		if i > 0 {
			if err := sleepCtx(ctx, interQueryDelay); err != nil {
				return rows, err
			}
		}

		items, err := c.search(ctx, q, publishedAfter, limit)
		if err != nil {
			return rows, fmt.Errorf("query %q: %w", q, err)
		}

		for _, it := range items {
			if it.ID.VideoID == "" || it.Snippet.Title == "" {
				continue
			}
			published, _ := time.Parse(time.RFC3339, it.Snippet.PublishedAt)
			if req.Window > 0 && !published.IsZero() && published.Before(cutoff) {
				continue
			}
			rows = append(rows, domain.RawRow{
				Title:       it.Snippet.Title,
				Link:        youtubeWatchURL + it.ID.VideoID,
				Description: it.Snippet.Description,
				PublishedAt: published,
				Source:      domain.SourceVideo,
			})
		}
	}
	return rows, nil
}

type youtubeItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
}

func (c *YouTubeCollector) search(ctx context.Context, query, publishedAfter string, limit int) ([]youtubeItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("order", "date")
	params.Set("regionCode", "KR")
	params.Set("relevanceLanguage", "ko")
	params.Set("publishedAfter", publishedAfter)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned %s", resp.Status)
	}

	var payload struct {
		Items []youtubeItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Items, nil
}
