package scanner

import (
	"context"
	"testing"

	"TrendScanner/internal/domain"
)

type noopCollector struct {
	name string
}

func (c *noopCollector) Name() string   { return c.name }
func (c *noopCollector) Source() string { return c.name }

func (c *noopCollector) Collect(ctx context.Context, req Request) ([]domain.RawRow, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := &noopCollector{name: "naver_shop"}
	reg.Register(first)

	got, err := reg.Resolve("naver_shop")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != first {
		t.Fatal("resolved a different collector")
	}

	replacement := &noopCollector{name: "naver_shop"}
	reg.Register(replacement)
	got, _ = reg.Resolve("naver_shop")
	if got != replacement {
		t.Fatal("re-registration must replace the collector")
	}

	if _, err := reg.Resolve("unknown"); err == nil {
		t.Fatal("want error for unknown collector")
	}
}
