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
	naverShopURL = "https://openapi.naver.com/v1/search/shop.json"
	naverNewsURL = "https://openapi.naver.com/v1/search/news.json"
	naverBlogURL = "https://openapi.naver.com/v1/search/blog.json"

	defaultDisplay = 20

	// interQueryDelay spaces successive calls to the same vendor. A
	// politeness pause, not backpressure.
	interQueryDelay = 150 * time.Millisecond
)

// NaverClient talks to the Naver open search APIs. One client is
// shared by the shop, news and blog collectors.
type NaverClient struct {
	clientID     string
	clientSecret string
	http         *http.Client
}

// NewNaverClient wires credentials and an HTTP client; the timeout
// defaults to 20 seconds.
func NewNaverClient(clientID, clientSecret string, client *http.Client) *NaverClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &NaverClient{clientID: clientID, clientSecret: clientSecret, http: client}
}

type naverItem struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	OriginalLink string `json:"originallink"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
	PostDate     string `json:"postdate"`
}

func (c *NaverClient) search(ctx context.Context, endpoint, query, sort string, display int) ([]naverItem, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("naver credentials missing")
	}
	if display <= 0 {
		display = defaultDisplay
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("sort", sort)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver returned %s", resp.Status)
	}

	var payload struct {
		Items []naverItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload.Items, nil
}

func (it naverItem) link() string {
	if it.Link != "" {
		return it.Link
	}
	return it.OriginalLink
}

func (it naverItem) publishedAt() time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, it.PubDate); err == nil {
			return t
		}
	}
	if t, err := time.Parse("20060102", it.PostDate); err == nil {
		return t
	}
	return time.Time{}
}

// ShopCollector seeds the pool from shopping listings: category
// queries sorted by relevance, no recency cut (listings carry no
// timestamp).
type ShopCollector struct {
	client *NaverClient
}

// NewShopCollector builds the shopping collector.
func NewShopCollector(client *NaverClient) *ShopCollector {
	return &ShopCollector{client: client}
}

// Name identifies the strategy inside the registry.
func (c *ShopCollector) Name() string { return domain.SourceShop }

// Source is the tag stamped on produced rows.
func (c *ShopCollector) Source() string { return domain.SourceShop }

// Collect runs each query against the shop API.
func (c *ShopCollector) Collect(ctx context.Context, req scanner.Request) ([]domain.RawRow, error) {
	return c.client.collectQueries(ctx, naverShopURL, "sim", domain.SourceShop, req, false)
}

// NewsCollector corroborates entities against recent news headlines.
type NewsCollector struct {
	client *NaverClient
}

// NewNewsCollector builds the news collector.
func NewNewsCollector(client *NaverClient) *NewsCollector {
	return &NewsCollector{client: client}
}

func (c *NewsCollector) Name() string   { return domain.SourceNews }
func (c *NewsCollector) Source() string { return domain.SourceNews }

// Collect runs each query against the news API, newest first, keeping
// rows inside the recency window.
func (c *NewsCollector) Collect(ctx context.Context, req scanner.Request) ([]domain.RawRow, error) {
	return c.client.collectQueries(ctx, naverNewsURL, "date", domain.SourceNews, req, true)
}

// BlogCollector mirrors NewsCollector over the blog search API.
type BlogCollector struct {
	client *NaverClient
}

// NewBlogCollector builds the blog collector.
func NewBlogCollector(client *NaverClient) *BlogCollector {
	return &BlogCollector{client: client}
}

func (c *BlogCollector) Name() string   { return domain.SourceBlog }
func (c *BlogCollector) Source() string { return domain.SourceBlog }

func (c *BlogCollector) Collect(ctx context.Context, req scanner.Request) ([]domain.RawRow, error) {
	return c.client.collectQueries(ctx, naverBlogURL, "date", domain.SourceBlog, req, true)
}

func (c *NaverClient) collectQueries(ctx context.Context, endpoint, sort, source string, req scanner.Request, recent bool) ([]domain.RawRow, error) {
	cutoff := time.Now().Add(-req.Window)

	var rows []domain.RawRow
	for i, q := range req.Queries {
		if i > 0 {
			if err := sleepCtx(ctx, interQueryDelay); err != nil {
				return rows, err
			}
		}

		items, err := c.search(ctx, endpoint, q, sort, req.Limit)
		if err != nil {
			return rows, fmt.Errorf("query %q: %w", q, err)
		}

		for _, it := range items {
			published := it.publishedAt()
			if recent && req.Window > 0 && !published.IsZero() && published.Before(cutoff) {
				continue
			}
			rows = append(rows, domain.RawRow{
				Title:       it.Title,
				Link:        it.link(),
				Description: it.Description,
				PublishedAt: published,
				Source:      source,
			})
		}
	}
	return rows, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
