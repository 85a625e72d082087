package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"TrendScanner/internal/ports"
)

const (
	datalabURL = "https://openapi.naver.com/v1/datalab/search"

	// maxKeywordGroups is the DataLab per-request group limit.
	maxKeywordGroups = 20

	// lookbackDays is the trend window the ratio is read from; the
	// latest data point is used as the entity's ratio.
	lookbackDays = 7
)

// Client reads relative search-interest ratios from Naver DataLab.
// DataLab is a group-trend API, so it corrects scores for known
// keywords rather than discovering new ones.
type Client struct {
	clientID     string
	clientSecret string
	http         *http.Client
}

var _ ports.TrendIndex = (*Client)(nil)

// NewClient creates a reusable DataLab client.
func NewClient(clientID, clientSecret string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{clientID: clientID, clientSecret: clientSecret, http: client}
}

type keywordGroup struct {
	GroupName string   `json:"groupName"`
	Keywords  []string `json:"keywords"`
}

type datalabRequest struct {
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate"`
	TimeUnit      string         `json:"timeUnit"`
	KeywordGroups []keywordGroup `json:"keywordGroups"`
	Device        string         `json:"device"`
	Ages          []string       `json:"ages"`
	Gender        string         `json:"gender"`
}

type datalabResponse struct {
	Results []struct {
		Title string `json:"title"`
		Data  []struct {
			Ratio float64 `json:"ratio"`
		} `json:"data"`
	} `json:"results"`
}

// Ratios returns the most recent daily search ratio per keyword.
// Keywords beyond the API group limit are ignored.
func (c *Client) Ratios(ctx context.Context, keywords []string) (map[string]float64, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("datalab credentials missing")
	}
	if len(keywords) == 0 {
		return map[string]float64{}, nil
	}
	if len(keywords) > maxKeywordGroups {
		keywords = keywords[:maxKeywordGroups]
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	groups := make([]keywordGroup, 0, len(keywords))
	for _, k := range keywords {
		groups = append(groups, keywordGroup{GroupName: k, Keywords: []string{k}})
	}

	payload := datalabRequest{
		StartDate:     start.Format("2006-01-02"),
		EndDate:       end.Format("2006-01-02"),
		TimeUnit:      "date",
		KeywordGroups: groups,
		Ages:          []string{},
	}

	var resp datalabResponse
	if err := c.post(ctx, payload, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(resp.Results))
	for _, row := range resp.Results {
		if row.Title == "" || len(row.Data) == 0 {
			continue
		}
		out[row.Title] = row.Data[len(row.Data)-1].Ratio
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, datalabURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("datalab returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
