package ocr

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu      sync.Mutex
	uploads map[string]*Upload
	order   []string
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		uploads: make(map[string]*Upload),
		now:     time.Now,
	}
}

func (r *InMemoryRepository) Create(_ context.Context, u *Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Status = StatusUploaded
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt

	stored := *u
	r.uploads[u.ID] = &stored
	r.order = append(r.order, u.ID)
	return nil
}

func (r *InMemoryRepository) ClaimNext(_ context.Context) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	staleBefore := r.now().Add(-staleClaimAfter)
	for _, id := range r.order {
		u := r.uploads[id]
		stale := u.Status == StatusProcessing && u.UpdatedAt.Before(staleBefore)
		if u.Status != StatusUploaded && !stale {
			continue
		}
		u.Status = StatusProcessing
		u.FailureReason = nil
		u.UpdatedAt = r.now()
		claimed := *u
		return &claimed, nil
	}
	return nil, nil
}

func (r *InMemoryRepository) MarkAnalyzed(_ context.Context, id, rawText, ingredientText, scanID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.uploads[id]
	if !ok {
		return ErrUploadNotFound
	}
	u.Status = StatusAnalyzed
	u.RawText = &rawText
	u.IngredientText = &ingredientText
	u.ScanID = &scanID
	u.FailureReason = nil
	u.UpdatedAt = r.now()
	return nil
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id string, rawText *string, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.uploads[id]
	if !ok {
		return ErrUploadNotFound
	}
	u.Status = StatusFailed
	if rawText != nil {
		u.RawText = rawText
	}
	u.FailureReason = &reason
	u.UpdatedAt = r.now()
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID, id string) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.uploads[id]
	if !ok || u.UserID != userID {
		return nil, ErrUploadNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryRepository) Requeue(_ context.Context, userID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.uploads[id]
	if !ok || u.UserID != userID || u.Status != StatusFailed {
		return false, nil
	}
	u.Status = StatusUploaded
	u.FailureReason = nil
	u.UpdatedAt = r.now()
	return true, nil
}
