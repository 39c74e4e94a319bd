package family

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu       sync.Mutex
	families map[string]*Family // by family id
	members  map[string]*Member // by member id
	order    []string           // member ids, insertion order
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		families: make(map[string]*Family),
		members:  make(map[string]*Member),
	}
}

func (r *InMemoryRepository) FamilyForUser(_ context.Context, userID string) (*Family, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []*Family
	for _, f := range r.families {
		if f.UserID == userID {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return nil, ErrFamilyNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	f := *found[0]
	return &f, nil
}

func (r *InMemoryRepository) CreateFamily(_ context.Context, family *Family) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if family.ID == "" {
		family.ID = uuid.New().String()
	}
	f := *family
	r.families[f.ID] = &f
	return nil
}

func (r *InMemoryRepository) ListMembers(_ context.Context, familyID string) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := []Member{}
	for _, id := range r.order {
		m, ok := r.members[id]
		if !ok || m.FamilyID != familyID {
			continue
		}
		members = append(members, cloneMember(m))
	}
	return members, nil
}

func (r *InMemoryRepository) CreateMember(_ context.Context, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.families[member.FamilyID]; !ok {
		return ErrFamilyNotFound
	}

	member.ID = uuid.New().String()
	assignAllergyIDs(member)

	m := cloneMember(member)
	r.members[m.ID] = &m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *InMemoryRepository) ReplaceMember(_ context.Context, userID string, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ownedMember(userID, member.ID)
	if !ok {
		return ErrMemberNotFound
	}

	member.FamilyID = existing.FamilyID
	assignAllergyIDs(member)

	m := cloneMember(member)
	r.members[m.ID] = &m
	return nil
}

func (r *InMemoryRepository) DeleteMember(_ context.Context, userID, memberID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ownedMember(userID, memberID)
	if !ok {
		return "", ErrMemberNotFound
	}

	delete(r.members, memberID)
	for i, id := range r.order {
		if id == memberID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return existing.FamilyID, nil
}

func (r *InMemoryRepository) ownedMember(userID, memberID string) (*Member, bool) {
	if !validID(memberID) {
		return nil, false
	}
	m, ok := r.members[memberID]
	if !ok {
		return nil, false
	}
	f, ok := r.families[m.FamilyID]
	if !ok || f.UserID != userID {
		return nil, false
	}
	return m, true
}

func assignAllergyIDs(member *Member) {
	for i := range member.Allergies {
		member.Allergies[i].ID = uuid.New().String()
	}
}

func cloneMember(m *Member) Member {
	c := *m
	c.Allergies = append([]Allergy{}, m.Allergies...)
	if m.Age != nil {
		age := *m.Age
		c.Age = &age
	}
	return c
}
