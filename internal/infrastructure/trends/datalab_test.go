package trends

import (
	"context"
	"testing"
)

func TestRatiosRequiresCredentials(t *testing.T) {
	t.Parallel()

	c := NewClient("", "", nil)
	if _, err := c.Ratios(context.Background(), []string{"삼성 RF85"}); err == nil {
		t.Fatal("want error without credentials")
	}
}

func TestRatiosEmptyKeywords(t *testing.T) {
	t.Parallel()

	c := NewClient("id", "secret", nil)
	ratios, err := c.Ratios(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty keyword list must be a no-op: %v", err)
	}
	if len(ratios) != 0 {
		t.Fatalf("ratios = %v, want empty", ratios)
	}
}
