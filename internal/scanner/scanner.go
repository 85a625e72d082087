package scanner

import (
	"context"
	"fmt"
	"time"

	"TrendScanner/internal/domain"
)

// Request carries all parameters required to execute one collection.
type Request struct {
	// Window bounds recency: collectors only return rows published
	// within it, when the vendor exposes timestamps.
	Window time.Duration
	// Queries are the search terms or seed categories to collect for.
	// Collectors without a query notion (feeds) ignore them.
	Queries []string
	// Limit caps rows taken per query; 0 means the collector default.
	Limit int
}

// Collector is a single source strategy (Naver shop, YouTube, RSS...).
type Collector interface {
	Name() string
	Source() string
	Collect(ctx context.Context, req Request) ([]domain.RawRow, error)
}

// Registry keeps a mapping from collector names to implementations.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: map[string]Collector{}}
}

// Register adds or replaces a collector implementation.
func (r *Registry) Register(c Collector) {
	if r.collectors == nil {
		r.collectors = map[string]Collector{}
	}
	r.collectors[c.Name()] = c
}

// Resolve returns a collector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Collector, error) {
	if c, ok := r.collectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("collector %s is not registered", name)
}
