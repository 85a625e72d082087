package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
)

// maxDigestItems keeps the message inside Telegram's length limits.
const maxDigestItems = 10

// Notifier sends a digest of the ranked entities to a Telegram chat.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishReport formats the top entities and posts them as one
// Markdown message.
func (n *Notifier) PublishReport(ctx context.Context, report domain.Report) error {
	return n.PublishDigest(ctx, buildDigest(report))
}

// PublishDigest posts a prepared Markdown message.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", digest)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func buildDigest(report domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Trend entities* (%dh window, run %s)\n\n",
		report.TimeWindowHours, report.RunID)

	for i, item := range report.Items {
		if i == maxDigestItems {
			fmt.Fprintf(&b, "... and %d more\n", len(report.Items)-maxDigestItems)
			break
		}
		fmt.Fprintf(&b, "%d. %s %s - %.1f (%d mentions)\n%s\n",
			i+1, item.Brand, item.ModelName, item.Score,
			item.MentionCount24h, item.IssueReason)
	}

	if len(report.Items) == 0 {
		b.WriteString("no entities above threshold\n")
	}
	return b.String()
}
