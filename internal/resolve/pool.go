package resolve

import (
	"TrendScanner/internal/domain"
)

// Caps on the accumulated evidence per record.
const (
	maxEvidenceLinks = 6
	maxReasons       = 4
	maxBriefs        = 8
)

// Observation is one validated sighting of an entity in a source row,
// the unit the pipeline folds into the pool.
type Observation struct {
	Candidate domain.Candidate
	Source    string
	Weight    int
	Link      string
	Reason    string
	Brief     domain.EvidenceBrief
}

// Pool accumulates entity records keyed by (brand, model) in arrival
// order. Creation on first use is an explicit branch, not a side
// effect of lookup.
type Pool struct {
	records map[domain.EntityKey]*domain.EntityRecord
	order   []domain.EntityKey
}

// NewPool returns an empty pool; every run starts with one.
func NewPool() *Pool {
	return &Pool{records: make(map[domain.EntityKey]*domain.EntityRecord)}
}

// Len reports how many distinct keys the pool holds.
func (p *Pool) Len() int { return len(p.order) }

// Lookup returns the record for a key without creating it.
func (p *Pool) Lookup(key domain.EntityKey) (*domain.EntityRecord, bool) {
	rec, ok := p.records[key]
	return rec, ok
}

// getOrCreate returns the record for key, seeding a new one from the
// candidate when the key is absent. The canonical name is first-write-
// wins across the whole run.
func (p *Pool) getOrCreate(key domain.EntityKey, c domain.Candidate) *domain.EntityRecord {
	if rec, ok := p.records[key]; ok {
		return rec
	}
	name := c.ProductName
	if name == "" {
		name = key.Brand + " " + key.Model
	}
	rec := &domain.EntityRecord{
		Key:           key,
		CanonicalName: name,
		SourceMix:     make(map[string]int),
		Category:      c.Category,
	}
	p.records[key] = rec
	p.order = append(p.order, key)
	return rec
}

// Merge folds one observation into the pool. Returns false when the
// candidate does not carry a valid key. Totals (mention count, source
// mix) are independent of arrival order; the canonical name and the
// first evidence and reason entries are first-write-wins.
func (p *Pool) Merge(obs Observation) bool {
	key, ok := domain.NewEntityKey(obs.Candidate.Brand, obs.Candidate.Model)
	if !ok {
		return false
	}

	rec := p.getOrCreate(key, obs.Candidate)
	rec.MentionCount += obs.Weight
	rec.SourceMix[obs.Source]++

	if obs.Link != "" && !containsString(rec.EvidenceLinks, obs.Link) &&
		len(rec.EvidenceLinks) < maxEvidenceLinks {
		rec.EvidenceLinks = append(rec.EvidenceLinks, obs.Link)
	}
	if obs.Reason != "" && !containsString(rec.Reasons, obs.Reason) &&
		len(rec.Reasons) < maxReasons {
		rec.Reasons = append(rec.Reasons, obs.Reason)
	}
	if obs.Brief.Source != "" && len(rec.Briefs) < maxBriefs {
		rec.Briefs = append(rec.Briefs, obs.Brief)
	}
	if rec.Category == "" || rec.Category == DefaultCategory {
		if obs.Candidate.Category != "" {
			rec.Category = obs.Candidate.Category
		}
	}
	return true
}

// Records returns the records in key insertion order.
func (p *Pool) Records() []*domain.EntityRecord {
	out := make([]*domain.EntityRecord, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, p.records[key])
	}
	return out
}

// Keys returns the keys in insertion order.
func (p *Pool) Keys() []domain.EntityKey {
	out := make([]domain.EntityKey, len(p.order))
	copy(out, p.order)
	return out
}
