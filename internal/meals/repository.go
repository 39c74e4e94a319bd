package meals

import (
	"context"
	"errors"
)

var ErrMealNotFound = errors.New("meal not found")

type Repository interface {
	Create(ctx context.Context, m *Meal) error
	Update(ctx context.Context, m *Meal) error
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (*Meal, error)
	// ListRange returns meals with from <= date <= to, both YYYY-MM-DD.
	ListRange(ctx context.Context, userID, from, to string) ([]Meal, error)
}
