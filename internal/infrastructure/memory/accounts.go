package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/device-rental-api/internal/domain"
	"github.com/jhoicas/device-rental-api/internal/domain/entity"
	"github.com/jhoicas/device-rental-api/internal/domain/repository"
)

var (
	_ repository.FacilityRepository = (*FacilityRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// FacilityRepo sedes (fuera de transacción).
type FacilityRepo struct {
	s *Store
}

// NewFacilityRepository construye el repositorio de sedes.
func NewFacilityRepository(s *Store) *FacilityRepo {
	return &FacilityRepo{s: s}
}

// Create persiste una sede.
func (r *FacilityRepo) Create(_ context.Context, f *entity.Facility) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.facilities {
		if existing.ID == f.ID || existing.Name == f.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.facilities[f.ID] = *f
	return nil
}

// GetByID obtiene una sede por ID.
func (r *FacilityRepo) GetByID(_ context.Context, id string) (*entity.Facility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.facilities[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// Update actualiza una sede existente.
func (r *FacilityRepo) Update(_ context.Context, f *entity.Facility) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.facilities[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.facilities[f.ID] = *f
	return nil
}

// List lista sedes por nombre.
func (r *FacilityRepo) List(_ context.Context, limit, offset int) ([]*entity.Facility, error) {
	r.s.mu.RLock()
	list := make([]*entity.Facility, 0, len(r.s.facilities))
	for _, f := range r.s.facilities {
		f := f
		list = append(list, &f)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// UserRepo usuarios (fuera de transacción).
type UserRepo struct {
	s *Store
}

// NewUserRepository construye el repositorio de usuarios.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

// Create persiste un usuario; el email es único.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindByEmail obtiene un usuario por email.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// ListByFacility lista usuarios de una sede.
func (r *UserRepo) ListByFacility(_ context.Context, facilityID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	list := make([]*entity.User, 0)
	for _, u := range r.s.users {
		if u.FacilityID == facilityID {
			u := u
			list = append(list, &u)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return paginate(list, limit, offset), nil
}
