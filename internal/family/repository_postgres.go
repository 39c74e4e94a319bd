package family

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

func (r *PostgresRepository) FamilyForUser(ctx context.Context, userID string) (*Family, error) {
	f := &Family{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name
		FROM families
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, userID).Scan(&f.ID, &f.UserID, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFamilyNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, family *Family) error {
	if family.ID == "" {
		family.ID = uuid.New().String()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO families (id, user_id, name)
		VALUES ($1, $2, $3)
	`, family.ID, family.UserID, family.Name)
	return err
}

// --------------------------------------------------
// LIST MEMBERS (WITH ALLERGIES)
// --------------------------------------------------
func (r *PostgresRepository) ListMembers(ctx context.Context, familyID string) ([]Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			m.id, m.name, m.role, m.age,
			a.id, a.name, a.severity, a.notes
		FROM family_members m
		LEFT JOIN allergies a ON a.member_id = m.id
		WHERE m.family_id = $1
		ORDER BY m.created_at ASC, m.id, a.name ASC
	`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	index := map[string]int{}

	for rows.Next() {
		var (
			m                         Member
			role                      string
			allergyID, name, severity *string
			notes                     *string
		)
		if err := rows.Scan(
			&m.ID, &m.Name, &role, &m.Age,
			&allergyID, &name, &severity, &notes,
		); err != nil {
			return nil, err
		}
		m.Role = ParseRole(role)

		i, ok := index[m.ID]
		if !ok {
			m.FamilyID = familyID
			m.Allergies = []Allergy{}
			members = append(members, m)
			i = len(members) - 1
			index[m.ID] = i
		}

		if allergyID == nil {
			continue
		}

		sev, err := allergen.ParseSeverity(deref(severity))
		if err != nil {
			sev = allergen.SeverityModerate
		}
		members[i].Allergies = append(members[i].Allergies, Allergy{
			ID:       *allergyID,
			Allergen: deref(name),
			Severity: sev,
			Notes:    notes,
		})
	}

	return members, rows.Err()
}

// --------------------------------------------------
// CREATE MEMBER (ATOMIC)
// --------------------------------------------------
func (r *PostgresRepository) CreateMember(ctx context.Context, member *Member) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	member.ID = uuid.New().String()

	_, err = tx.Exec(ctx, `
		INSERT INTO family_members (id, family_id, name, role, age)
		VALUES ($1, $2, $3, $4, $5)
	`, member.ID, member.FamilyID, member.Name, string(member.Role), member.Age)
	if err != nil {
		return err
	}

	if err := insertAllergies(ctx, tx, member); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --------------------------------------------------
// REPLACE MEMBER (OWNERSHIP CHECKED, ALLERGIES SWAPPED)
// --------------------------------------------------
func (r *PostgresRepository) ReplaceMember(ctx context.Context, userID string, member *Member) error {
	if !validID(member.ID) {
		return ErrMemberNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE family_members m
		SET name = $1, role = $2, age = $3
		FROM families f
		WHERE m.id = $4
		  AND f.id = m.family_id
		  AND f.user_id = $5
		RETURNING m.family_id
	`, member.Name, string(member.Role), member.Age, member.ID, userID).Scan(&member.FamilyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM allergies WHERE member_id = $1`, member.ID); err != nil {
		return err
	}

	if err := insertAllergies(ctx, tx, member); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --------------------------------------------------
// DELETE MEMBER (ALLERGIES CASCADE)
// --------------------------------------------------
func (r *PostgresRepository) DeleteMember(ctx context.Context, userID, memberID string) (string, error) {
	if !validID(memberID) {
		return "", ErrMemberNotFound
	}

	var familyID string
	err := r.db.QueryRow(ctx, `
		DELETE FROM family_members m
		USING families f
		WHERE m.id = $1
		  AND f.id = m.family_id
		  AND f.user_id = $2
		RETURNING m.family_id
	`, memberID, userID).Scan(&familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrMemberNotFound
		}
		return "", err
	}
	return familyID, nil
}

func insertAllergies(ctx context.Context, tx pgx.Tx, member *Member) error {
	if len(member.Allergies) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range member.Allergies {
		a := &member.Allergies[i]
		a.ID = uuid.New().String()
		batch.Queue(`
			INSERT INTO allergies (id, member_id, name, severity, notes)
			VALUES ($1, $2, $3, $4, $5)
		`, a.ID, member.ID, a.Allergen, a.Severity.Column(), a.Notes)
	}

	return tx.SendBatch(ctx, batch).Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
