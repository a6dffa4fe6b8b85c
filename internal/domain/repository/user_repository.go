package repository

import (
	"context"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// UserRepository defines the identity-record operations used by authentication.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// ProfileRepository defines operations on the profiles relation.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Profile, error)
	Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error)
	// SearchPublic matches non-private profiles by case-insensitive name substring, name ascending.
	SearchPublic(ctx context.Context, query string, limit int) ([]entity.Profile, error)
}
