package manifest

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryCatalog is an in-memory Catalog used by tests and dry runs.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{records: make(map[string]*Record)}
}

// Lookup returns the record for a filename, or nil when unseen.
func (c *MemoryCatalog) Lookup(ctx context.Context, filename string) (*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[filename]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Record replaces-or-inserts the manifest entry for rec.Filename.
func (c *MemoryCatalog) Record(ctx context.Context, rec *Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *rec
	if cp.ProcessedAt.IsZero() {
		cp.ProcessedAt = time.Now()
	}
	c.records[cp.Filename] = &cp
	return nil
}

// RecordTx ignores the transaction handle; in-memory writes are atomic.
func (c *MemoryCatalog) RecordTx(ctx context.Context, _ Execer, rec *Record) error {
	return c.Record(ctx, rec)
}

// All returns every record, ordered by extracted date then filename.
func (c *MemoryCatalog) All(ctx context.Context) ([]*Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]*Record, 0, len(c.records))
	for _, rec := range c.records {
		cp := *rec
		records = append(records, &cp)
	}
	sort.Slice(records, func(i, j int) bool {
		di, dj := records[i].ExtractedDate, records[j].ExtractedDate
		switch {
		case di == nil && dj == nil:
			return records[i].Filename < records[j].Filename
		case di == nil:
			return false
		case dj == nil:
			return true
		case !di.Equal(*dj):
			return di.Before(*dj)
		default:
			return records[i].Filename < records[j].Filename
		}
	})
	return records, nil
}
