package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	scans map[string]Scan
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{scans: make(map[string]Scan)}
}

func (r *InMemoryRepository) Save(_ context.Context, s *Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.scans[s.ID] = *s
	return nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Scan{}
	for _, s := range r.scans {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (*Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scans[id]
	if !validID(id) || !ok || s.UserID != userID {
		return nil, ErrScanNotFound
	}
	return &s, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.scans[id]
	if !validID(id) || !ok || s.UserID != userID {
		return ErrScanNotFound
	}
	delete(r.scans, id)
	return nil
}
