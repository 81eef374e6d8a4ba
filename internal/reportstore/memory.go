package reportstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	apperrors "rcm-benchmark/internal/common/errors"
)

// MemoryStore is used when no Postgres host is configured. Reports live for
// the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = cloneRecord(*rec)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.NewReportNotFoundError(id)
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (s *MemoryStore) UpdateDelivery(_ context.Context, id string, delivery json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return apperrors.NewReportNotFoundError(id)
	}
	rec.Delivery = append(json.RawMessage(nil), delivery...)
	s.records[id] = rec
	return nil
}

func (s *MemoryStore) Find(_ context.Context, f Filter) ([]Record, int, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if f.matches(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	if limit := clampLimit(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func cloneRecord(rec Record) Record {
	rec.Document = append(json.RawMessage(nil), rec.Document...)
	if rec.Delivery != nil {
		rec.Delivery = append(json.RawMessage(nil), rec.Delivery...)
	}
	return rec
}
