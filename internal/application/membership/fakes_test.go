package membership

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
)

// In-memory fakes backing the membership service tests.

type memMemberRepo struct {
	members map[uuid.UUID]*membership.Member
}

func newMemMemberRepo(members ...*membership.Member) *memMemberRepo {
	r := &memMemberRepo{members: make(map[uuid.UUID]*membership.Member)}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (r *memMemberRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.Member, error) {
	if m, ok := r.members[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memMemberRepo) FindByEmail(_ context.Context, email string) (*membership.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMemberRepo) FindAll(_ context.Context, filter membership.MemberFilter) ([]membership.Member, int64, error) {
	var out []membership.Member
	for _, m := range r.members {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *memMemberRepo) Save(_ context.Context, member *membership.Member) error {
	r.members[member.ID] = member
	return nil
}

func (r *memMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.members, id)
	return nil
}

func (r *memMemberRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, m := range r.members {
		if m.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memSeasonRepo struct {
	seasons map[uuid.UUID]*membership.Season
}

func newMemSeasonRepo(seasons ...*membership.Season) *memSeasonRepo {
	r := &memSeasonRepo{seasons: make(map[uuid.UUID]*membership.Season)}
	for _, s := range seasons {
		r.seasons[s.ID] = s
	}
	return r
}

func (r *memSeasonRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.Season, error) {
	if s, ok := r.seasons[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memSeasonRepo) FindAll(_ context.Context, _ shared.Filter) ([]membership.Season, int64, error) {
	var out []membership.Season
	for _, s := range r.seasons {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *memSeasonRepo) Save(_ context.Context, season *membership.Season) error {
	r.seasons[season.ID] = season
	return nil
}

func (r *memSeasonRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.seasons, id)
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*membership.MembershipProduct
}

func newMemProductRepo(products ...*membership.MembershipProduct) *memProductRepo {
	r := &memProductRepo{products: make(map[uuid.UUID]*membership.MembershipProduct)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.MembershipProduct, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAll(_ context.Context, filter membership.ProductFilter) ([]membership.MembershipProduct, int64, error) {
	var out []membership.MembershipProduct
	for _, p := range r.products {
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memProductRepo) Save(_ context.Context, product *membership.MembershipProduct) error {
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

type memRegistrationRepo struct {
	registrations map[uuid.UUID]*membership.Registration
	seq           int
}

func newMemRegistrationRepo(registrations ...*membership.Registration) *memRegistrationRepo {
	r := &memRegistrationRepo{registrations: make(map[uuid.UUID]*membership.Registration)}
	for _, reg := range registrations {
		r.registrations[reg.ID] = reg
	}
	return r
}

func (r *memRegistrationRepo) FindByID(_ context.Context, id uuid.UUID) (*membership.Registration, error) {
	if reg, ok := r.registrations[id]; ok {
		return reg, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRegistrationRepo) FindByReference(_ context.Context, reference string) (*membership.Registration, error) {
	for _, reg := range r.registrations {
		if reg.Reference == reference {
			return reg, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRegistrationRepo) FindByMemberAndSeason(_ context.Context, memberID, seasonID uuid.UUID) (*membership.Registration, error) {
	for _, reg := range r.registrations {
		if reg.MemberID == memberID && reg.SeasonID == seasonID {
			return reg, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memRegistrationRepo) FindAll(_ context.Context, filter membership.RegistrationFilter) ([]membership.Registration, int64, error) {
	var out []membership.Registration
	for _, reg := range r.registrations {
		if filter.Status != nil && reg.Status != *filter.Status {
			continue
		}
		if filter.MemberID != nil && reg.MemberID != *filter.MemberID {
			continue
		}
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

func (r *memRegistrationRepo) Save(_ context.Context, registration *membership.Registration) error {
	r.registrations[registration.ID] = registration
	return nil
}

func (r *memRegistrationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.registrations, id)
	return nil
}

func (r *memRegistrationRepo) NextReference(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("REG-2026-%04d", r.seq), nil
}

// fakeDocumentStore captures uploads in memory
type fakeDocumentStore struct {
	objects map[string][]byte
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{objects: make(map[string][]byte)}
}

func (s *fakeDocumentStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *fakeDocumentStore) PresignGet(_ context.Context, key string) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", shared.ErrNotFound
	}
	return "https://documents.example.com/" + key + "?signed=1", nil
}
