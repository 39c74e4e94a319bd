package ocr

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *Upload) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Status = StatusUploaded

	return r.db.QueryRow(ctx, `
		INSERT INTO label_uploads (id, user_id, object_key, original_filename, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.ID, u.UserID, u.ObjectKey, u.OriginalFilename, string(u.Status)).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *PostgresRepository) ClaimNext(ctx context.Context) (*Upload, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var u Upload
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, object_key, original_filename, created_at
		FROM label_uploads
		WHERE status = 'UPLOADED'
		   OR (status = 'OCR_PROCESSING' AND updated_at < now() - make_interval(secs => $1))
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, staleClaimAfter.Seconds()).Scan(&u.ID, &u.UserID, &u.ObjectKey, &u.OriginalFilename, &u.CreatedAt)

	// No pending jobs is NOT an error
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE label_uploads
		SET status = 'OCR_PROCESSING', failure_reason = NULL, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	u.Status = StatusProcessing
	return &u, nil
}

func (r *PostgresRepository) MarkAnalyzed(ctx context.Context, id, rawText, ingredientText, scanID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE label_uploads
		SET status = 'ANALYZED',
		    raw_text = $1,
		    ingredient_text = $2,
		    scan_id = $3,
		    failure_reason = NULL,
		    updated_at = now()
		WHERE id = $4
	`, rawText, ingredientText, scanID, id)
	return err
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id string, rawText *string, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE label_uploads
		SET status = 'FAILED',
		    raw_text = COALESCE($1, raw_text),
		    failure_reason = $2,
		    updated_at = now()
		WHERE id = $3
	`, rawText, reason, id)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUploadNotFound
	}

	var (
		u      Upload
		status string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, object_key, original_filename, status,
		       raw_text, ingredient_text, scan_id::text, failure_reason,
		       created_at, updated_at
		FROM label_uploads
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&u.ID, &u.UserID, &u.ObjectKey, &u.OriginalFilename, &status,
		&u.RawText, &u.IngredientText, &u.ScanID, &u.FailureReason,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Status = Status(status)
	return &u, nil
}

func (r *PostgresRepository) Requeue(ctx context.Context, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE label_uploads
		SET status = 'UPLOADED', failure_reason = NULL, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = 'FAILED'
	`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
