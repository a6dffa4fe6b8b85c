package repository

import (
	"context"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// SpecimenRepository defines operations on the bonsai_specimens relation.
// List methods return newest first.
type SpecimenRepository interface {
	Create(ctx context.Context, s *entity.Specimen) error
	GetByID(ctx context.Context, id string) (*entity.Specimen, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Specimen, error)
	ListAll(ctx context.Context, limit int) ([]entity.Specimen, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.Specimen, error)
	// Search matches name or species by case-insensitive substring.
	Search(ctx context.Context, query string, limit int) ([]entity.Specimen, error)
	Update(ctx context.Context, id, ownerID string, patch entity.SpecimenPatch) (*entity.Specimen, error)
	// Delete removes the specimen if owned by ownerID. Deleting a missing row is not an error.
	Delete(ctx context.Context, id, ownerID string) error
}
