package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrScanNotFound = errors.New("scan not found")

// validID reports whether id can match a UUID primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type Repository interface {
	Save(ctx context.Context, s *Scan) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Scan, error)
	Get(ctx context.Context, userID, id string) (*Scan, error)
	Delete(ctx context.Context, userID, id string) error
}
