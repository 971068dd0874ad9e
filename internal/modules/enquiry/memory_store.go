// README: In-memory Store used by tests and local development without Redis.
package enquiry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"chauffeur/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[types.ID]*Enquiry
	counters map[int]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[types.ID]*Enquiry),
		counters: make(map[int]int64),
	}
}

func (s *MemoryStore) Save(_ context.Context, e *Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.UpdatedAt = time.Now()
	clone := *e
	s.byID[e.ID] = &clone
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id types.ID) (*Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *MemoryStore) FindByReference(ctx context.Context, ref string) (*Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.byID {
		if e.ReferenceNumber == ref {
			clone := *e
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByJobSuffix(ctx context.Context, suffix string) (*Enquiry, error) {
	all, err := s.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		if strings.HasSuffix(e.ReferenceNumber, suffix) {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]*Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*Enquiry, 0, len(s.byID))
	for _, e := range s.byID {
		clone := *e
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Enquiry, error) {
	all, err := s.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	var filtered []*Enquiry
	for _, e := range all {
		if e.Status == status {
			filtered = append(filtered, e)
		}
	}
	return page(filtered, limit, offset), nil
}

func (s *MemoryStore) Delete(_ context.Context, e *Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, e.ID)
	return nil
}

func (s *MemoryStore) NextReference(_ context.Context, prefix string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	year := now.Year()
	s.counters[year]++
	return fmt.Sprintf("%s-%d-%06d", prefix, year, s.counters[year]), nil
}

func page(items []*Enquiry, limit, offset int) []*Enquiry {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
