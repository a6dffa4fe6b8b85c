package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

type UserRepository struct{ s *Store }

func NewUserRepository(s *Store) *UserRepository { return &UserRepository{s: s} }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.users {
		if existing.Email == email {
			return apperror.Conflict("user already exists")
		}
	}
	now := r.s.now()
	row := entity.User{ID: uuid.NewString(), Email: email, Password: u.Password, CreatedAt: now, UpdatedAt: now}
	r.s.users[row.ID] = row
	*u = row
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return apperror.NotFound("user not found")
	}
	u.Password = hash
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

type ProfileRepository struct{ s *Store }

func NewProfileRepository(s *Store) *ProfileRepository { return &ProfileRepository{s: s} }

func (r *ProfileRepository) Create(_ context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.ID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[p.ID]; ok {
		return apperror.Conflict("profile already exists")
	}
	row := *p
	if row.Theme == "" {
		row.Theme = entity.ThemeDark
	}
	row.CreatedAt = r.s.now()
	row.UpdatedAt = row.CreatedAt
	r.s.profiles[row.ID] = row
	*p = row
	return nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile not found")
	}
	return &p, nil
}

func (r *ProfileRepository) GetByIDs(_ context.Context, ids []string) ([]entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Profile{}
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProfileRepository) Update(_ context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile not found")
	}
	patch.Apply(&p)
	p.UpdatedAt = r.s.now()
	r.s.profiles[id] = p
	return &p, nil
}

func (r *ProfileRepository) SearchPublic(_ context.Context, query string, limit int) ([]entity.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(query)
	out := []entity.Profile{}
	for _, p := range r.s.profiles {
		if !p.IsPrivate && strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProfileRepository = (*ProfileRepository)(nil)
)
