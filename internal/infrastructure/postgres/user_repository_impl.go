package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

const (
	tableUsers    = "users"
	tableProfiles = "profiles"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row, err := InsertOne[entity.User](ctx, r.pool, tableUsers, map[string]any{
		"email":         strings.ToLower(strings.TrimSpace(u.Email)),
		"password_hash": u.Password,
	})
	if err != nil {
		return err
	}
	*u = *row
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return SelectOne[entity.User](ctx, r.pool, tableUsers, Query{Filters: []Filter{Eq("id", id)}})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return SelectOne[entity.User](ctx, r.pool, tableUsers, Query{Filters: []Filter{Eq("email", email)}})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := UpdateReturning[entity.User](ctx, r.pool, tableUsers,
		map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()},
		Eq("id", id))
	return err
}

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	row, err := InsertOne[entity.Profile](ctx, r.pool, tableProfiles, map[string]any{
		"id":                    p.ID,
		"name":                  p.Name,
		"email":                 p.Email,
		"avatar":                p.Avatar,
		"is_private":            p.IsPrivate,
		"theme":                 string(p.Theme),
		"email_preferences":     p.EmailPreferences,
		"notification_settings": p.NotificationSettings,
	})
	if err != nil {
		return err
	}
	*p = *row
	return nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return SelectOne[entity.Profile](ctx, r.pool, tableProfiles, Query{Filters: []Filter{Eq("id", id)}})
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Profile, error) {
	if len(ids) == 0 {
		return []entity.Profile{}, nil
	}
	return SelectAll[entity.Profile](ctx, r.pool, tableProfiles, Query{Filters: []Filter{In("id", ids)}})
}

func (r *ProfileRepository) Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	cols["updated_at"] = time.Now().UTC()
	return UpdateReturning[entity.Profile](ctx, r.pool, tableProfiles, cols, Eq("id", id))
}

func (r *ProfileRepository) SearchPublic(ctx context.Context, query string, limit int) ([]entity.Profile, error) {
	return SelectAll[entity.Profile](ctx, r.pool, tableProfiles, Query{
		Filters: []Filter{Is("is_private", false), Contains("name", query)},
		Order:   []Order{Asc("name"), Asc("id")},
		Limit:   limit,
	})
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProfileRepository = (*ProfileRepository)(nil)
)
