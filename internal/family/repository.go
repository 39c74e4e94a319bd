package family

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrFamilyNotFound = errors.New("family not found")
	ErrMemberNotFound = errors.New("family member not found")
)

// validID reports whether id can match a UUID primary key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Repository defines all database operations for families
type Repository interface {
	// FamilyForUser returns the user's first family or ErrFamilyNotFound.
	FamilyForUser(ctx context.Context, userID string) (*Family, error)
	CreateFamily(ctx context.Context, family *Family) error

	ListMembers(ctx context.Context, familyID string) ([]Member, error)

	// CreateMember stores the member with its allergies in one transaction.
	CreateMember(ctx context.Context, member *Member) error

	// ReplaceMember updates name/role/age and swaps the full allergy set.
	// Returns ErrMemberNotFound when the member is not in the user's family.
	ReplaceMember(ctx context.Context, userID string, member *Member) error

	// DeleteMember returns the family id the member belonged to.
	DeleteMember(ctx context.Context, userID, memberID string) (string, error)
}
