package meals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	meals map[string]Meal
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{meals: make(map[string]Meal)}
}

func (r *InMemoryRepository) Create(_ context.Context, m *Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	r.meals[m.ID] = *m
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, m *Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.meals[m.ID]
	if !ok || existing.UserID != m.UserID {
		return ErrMealNotFound
	}
	m.CreatedAt = existing.CreatedAt
	r.meals[m.ID] = *m
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.meals[id]
	if !ok || existing.UserID != userID {
		return ErrMealNotFound
	}
	delete(r.meals, id)
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (*Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.meals[id]
	if !ok || m.UserID != userID {
		return nil, ErrMealNotFound
	}
	return &m, nil
}

func (r *InMemoryRepository) ListRange(_ context.Context, userID, from, to string) ([]Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Meal{}
	for _, m := range r.meals {
		// YYYY-MM-DD compares correctly as a string
		if m.UserID == userID && m.Date >= from && m.Date <= to {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
