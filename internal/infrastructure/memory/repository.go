// Package memory keeps every repository in process memory. It backs the
// "memory" storage driver used for local runs and the usecase tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
)

// Repository implements all domain repositories over maps guarded by one
// mutex, so every write is serialised the way row locks serialise them in
// Postgres.
type Repository struct {
	mu sync.Mutex

	seq        int64
	users      map[int64]*domain.User
	stores     map[int64]*domain.Store
	categories map[int64]*domain.Category
	members    map[int64]*domain.StoreMember
	campaigns  map[int64]*domain.Campaign
	coupons    map[int64]*domain.Coupon
	instances  map[int64]*domain.CouponInstance
	attempts   []*domain.ValidationAttempt
}

func NewRepository() *Repository {
	return &Repository{
		users:      map[int64]*domain.User{},
		stores:     map[int64]*domain.Store{},
		categories: map[int64]*domain.Category{},
		members:    map[int64]*domain.StoreMember{},
		campaigns:  map[int64]*domain.Campaign{},
		coupons:    map[int64]*domain.Coupon{},
		instances:  map[int64]*domain.CouponInstance{},
	}
}

func (r *Repository) nextID() int64 {
	r.seq++
	return r.seq
}

// PutUser stores a user record. Users belong to the auth service, so this is
// how local runs and tests provide them.
func (r *Repository) PutUser(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.nextID()
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *Repository) PutCategory(c *domain.Category) *domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.nextID()
	}
	cp := *c
	r.categories[c.ID] = &cp
	return c
}

// Attempts returns a copy of the validation audit trail.
func (r *Repository) Attempts() []domain.ValidationAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ValidationAttempt, len(r.attempts))
	for i, a := range r.attempts {
		out[i] = *a
	}
	return out
}

// users

func (r *Repository) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = domain.NormalizeEmail(email)
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// stores

func copyStore(s *domain.Store) *domain.Store {
	cp := *s
	cp.CategoryIDs = append([]int64(nil), s.CategoryIDs...)
	return &cp
}

func (r *Repository) CreateStore(_ context.Context, store *domain.Store, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	store.ID = r.nextID()
	r.stores[store.ID] = copyStore(store)
	return r.addMemberLocked(&domain.StoreMember{StoreID: store.ID, LojistaID: ownerID, CreatedAt: store.CreatedAt})
}

func (r *Repository) UpdateStore(_ context.Context, store *domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[store.ID]; !ok {
		return domain.ErrStoreNotFound
	}
	r.stores[store.ID] = copyStore(store)
	return nil
}

func (r *Repository) GetStoreByID(_ context.Context, id int64) (*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return copyStore(s), nil
}

func (r *Repository) GetStoresByIDs(_ context.Context, ids []int64) ([]*domain.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Store, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if s, ok := r.stores[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyStore(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// members

func (r *Repository) addMemberLocked(m *domain.StoreMember) error {
	for _, existing := range r.members {
		if existing.StoreID == m.StoreID && existing.LojistaID == m.LojistaID {
			return domain.ErrAlreadyMember
		}
	}
	m.ID = r.nextID()
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *Repository) AddMember(_ context.Context, member *domain.StoreMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addMemberLocked(member)
}

func (r *Repository) RemoveMember(_ context.Context, storeID, lojistaID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.members {
		if m.StoreID == storeID && m.LojistaID == lojistaID {
			delete(r.members, id)
			return nil
		}
	}
	return domain.ErrNotStoreMember
}

func (r *Repository) GetMembersByStoreID(_ context.Context, storeID int64) ([]*domain.StoreMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.StoreMember{}
	for _, m := range r.members {
		if m.StoreID != storeID {
			continue
		}
		cp := *m
		if u, ok := r.users[m.LojistaID]; ok {
			cp.Name = u.Name
			cp.Email = u.Email
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) GetStoreIDsByLojistaID(_ context.Context, lojistaID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int64{}
	for _, m := range r.members {
		if m.LojistaID == lojistaID {
			out = append(out, m.StoreID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *Repository) IsMember(_ context.Context, storeID, lojistaID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.StoreID == storeID && m.LojistaID == lojistaID {
			return true, nil
		}
	}
	return false, nil
}

// audit

func (r *Repository) CreateAttempt(_ context.Context, attempt *domain.ValidationAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = r.nextID()
	cp := *attempt
	r.attempts = append(r.attempts, &cp)
	return nil
}
