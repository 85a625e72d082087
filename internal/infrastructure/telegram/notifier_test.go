package telegram

import (
	"context"
	"strings"
	"testing"

	"TrendScanner/internal/domain"
)

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	report := domain.Report{
		RunID:           "run-1",
		TimeWindowHours: 24,
		Items: []domain.ReportItem{
			{
				Brand:           "삼성",
				ModelName:       "RF85",
				Score:           90.2,
				MentionCount24h: 4,
				IssueReason:     "24시간 내 다중 소스 언급",
			},
		},
	}

	digest := buildDigest(report)
	for _, want := range []string{"run-1", "삼성 RF85", "90.2", "4 mentions"} {
		if !strings.Contains(digest, want) {
			t.Fatalf("digest missing %q:\n%s", want, digest)
		}
	}
}

func TestBuildDigestTruncates(t *testing.T) {
	t.Parallel()

	report := domain.Report{TimeWindowHours: 24}
	for i := 0; i < maxDigestItems+3; i++ {
		report.Items = append(report.Items, domain.ReportItem{Brand: "삼성", ModelName: "RF85"})
	}

	digest := buildDigest(report)
	if !strings.Contains(digest, "and 3 more") {
		t.Fatalf("digest not truncated:\n%s", digest)
	}
}

func TestBuildDigestEmptyRun(t *testing.T) {
	t.Parallel()

	digest := buildDigest(domain.Report{TimeWindowHours: 24})
	if !strings.Contains(digest, "no entities above threshold") {
		t.Fatalf("empty run digest = %q", digest)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatal("want error without token and chat id")
	}
}
