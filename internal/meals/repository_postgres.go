package meals

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

const mealColumns = `
	id, user_id, plan_date::text, name, meal_type, ingredients,
	attendees::text[], COALESCE(notes, ''), prep_time, cook_time, created_at
`

func (r *PostgresRepository) Create(ctx context.Context, m *Meal) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO meals (
			id, user_id, plan_date, name, meal_type,
			ingredients, attendees, notes, prep_time, cook_time
		)
		VALUES ($1, $2, $3::date, $4, $5, $6, CAST($7::text[] AS uuid[]), NULLIF($8, ''), $9, $10)
		RETURNING created_at
	`,
		m.ID, m.UserID, m.Date, m.Name, string(m.Type),
		m.Ingredients, m.Attendees, m.Notes, m.PrepTime, m.CookTime,
	).Scan(&m.CreatedAt)
}

func (r *PostgresRepository) Update(ctx context.Context, m *Meal) error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return ErrMealNotFound
	}

	err := r.db.QueryRow(ctx, `
		UPDATE meals
		SET plan_date = $3::date,
		    name = $4,
		    meal_type = $5,
		    ingredients = $6,
		    attendees = CAST($7::text[] AS uuid[]),
		    notes = NULLIF($8, ''),
		    prep_time = $9,
		    cook_time = $10
		WHERE id = $1 AND user_id = $2
		RETURNING created_at
	`,
		m.ID, m.UserID, m.Date, m.Name, string(m.Type),
		m.Ingredients, m.Attendees, m.Notes, m.PrepTime, m.CookTime,
	).Scan(&m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMealNotFound
	}
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrMealNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM meals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Meal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMealNotFound
	}

	m, err := scanMeal(r.db.QueryRow(ctx, `
		SELECT `+mealColumns+`
		FROM meals
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) ListRange(ctx context.Context, userID, from, to string) ([]Meal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+mealColumns+`
		FROM meals
		WHERE user_id = $1 AND plan_date BETWEEN $2::date AND $3::date
		ORDER BY plan_date, created_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanMeal(row pgx.Row) (*Meal, error) {
	var (
		m        Meal
		mealType string
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.Date, &m.Name, &mealType, &m.Ingredients,
		&m.Attendees, &m.Notes, &m.PrepTime, &m.CookTime, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = MealType(mealType)
	return &m, nil
}
