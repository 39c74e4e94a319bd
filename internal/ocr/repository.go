package ocr

import (
	"context"
	"errors"
	"time"
)

var ErrUploadNotFound = errors.New("label upload not found")

// staleClaimAfter is how long an OCR_PROCESSING row may sit untouched
// before another worker may claim it again.
const staleClaimAfter = 10 * time.Minute

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	// ClaimNext moves the oldest UPLOADED row, or an OCR_PROCESSING row
	// abandoned for longer than staleClaimAfter, to OCR_PROCESSING.
	// It returns nil, nil when there is nothing to do.
	ClaimNext(ctx context.Context) (*Upload, error)
	MarkAnalyzed(ctx context.Context, id, rawText, ingredientText, scanID string) error
	MarkFailed(ctx context.Context, id string, rawText *string, reason string) error
	Get(ctx context.Context, userID, id string) (*Upload, error)
	// Requeue resets a FAILED upload; ok is false when the row is not FAILED.
	Requeue(ctx context.Context, userID, id string) (ok bool, err error)
}
