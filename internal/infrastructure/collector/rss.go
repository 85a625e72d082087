package collector

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/scanner"
)

// FeedCollector pulls trend and headline feeds (Google Trends RSS,
// Google News RSS). Feeds are fixed at construction; the request's
// queries are ignored. RSS is proper XML, so items are decoded with
// encoding/xml rather than the HTML parser, which mangles <link>
// elements.
type FeedCollector struct {
	feeds []string
	http  *http.Client
}

// NewFeedCollector wires the feed URLs.
func NewFeedCollector(feeds []string, client *http.Client) *FeedCollector {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FeedCollector{feeds: feeds, http: client}
}

// Name identifies the strategy inside the registry.
func (c *FeedCollector) Name() string { return domain.SourceFeed }

// Source is the tag stamped on produced rows.
func (c *FeedCollector) Source() string { return domain.SourceFeed }

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Collect fetches every configured feed and keeps items published
// inside the recency window. Items without a parseable timestamp are
// dropped: feeds republish old entries and recency is the signal here.
func (c *FeedCollector) Collect(ctx context.Context, req scanner.Request) ([]domain.RawRow, error) {
	if len(c.feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	cutoff := time.Now().UTC().Add(-req.Window)

	var rows []domain.RawRow
	var lastErr error
	for i, feed := range c.feeds {
		if i > 0 {
			if err := sleepCtx(ctx, interQueryDelay); err != nil {
				return rows, err
			}
		}

		items, err := c.fetch(ctx, feed)
		if err != nil {
			lastErr = fmt.Errorf("feed %s: %w", feed, err)
			continue
		}

		for _, it := range items {
			if it.Title == "" || it.Link == "" {
				continue
			}
			published := parsePubDate(it.PubDate)
			if published.IsZero() {
				continue
			}
			if req.Window > 0 && published.Before(cutoff) {
				continue
			}
			rows = append(rows, domain.RawRow{
				Title:       it.Title,
				Link:        it.Link,
				PublishedAt: published,
				Source:      domain.SourceFeed,
			})
		}
	}

	if len(rows) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return rows, nil
}

func (c *FeedCollector) fetch(ctx context.Context, feedURL string) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "TrendScanner/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return doc.Channel.Items, nil
}

func parsePubDate(value string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
