package scan

import (
	"context"
	"errors"

	"allergyguard/internal/allergen"

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

const scanColumns = `
	id, user_id, ingredients, analysis, detected_allergens,
	risk_level, is_problematic, recommendations, metadata, created_at
`

func (r *PostgresRepository) Save(ctx context.Context, s *Scan) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO scan_history (
			id, user_id, ingredients, analysis, detected_allergens,
			risk_level, is_problematic, recommendations, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`,
		s.ID, s.UserID, s.Ingredients, s.Analysis, s.DetectedAllergens,
		s.RiskLevel.String(), s.IsProblematic, s.Recommendations, s.Metadata,
	).Scan(&s.CreatedAt)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Scan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+scanColumns+`
		FROM scan_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, *s)
	}
	return scans, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Scan, error) {
	if !validID(id) {
		return nil, ErrScanNotFound
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+scanColumns+`
		FROM scan_history
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	s, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return ErrScanNotFound
	}

	cmd, err := r.db.Exec(ctx, `
		DELETE FROM scan_history
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrScanNotFound
	}
	return nil
}

func scanRow(row pgx.Row) (*Scan, error) {
	var (
		s    Scan
		risk string
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Ingredients, &s.Analysis, &s.DetectedAllergens,
		&risk, &s.IsProblematic, &s.Recommendations, &s.Metadata, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.RiskLevel = allergen.ParseRiskLevel(risk)
	return &s, nil
}
