package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

const tableSpecimens = "bonsai_specimens"

var newestFirst = []Order{Desc("created_at"), Asc("id")}

type SpecimenRepository struct {
	pool *pgxpool.Pool
}

func NewSpecimenRepository(pool *pgxpool.Pool) *SpecimenRepository {
	return &SpecimenRepository{pool: pool}
}

func (r *SpecimenRepository) Create(ctx context.Context, s *entity.Specimen) error {
	row, err := InsertOne[entity.Specimen](ctx, r.pool, tableSpecimens, map[string]any{
		"user_id":    s.UserID,
		"name":       s.Name,
		"species":    s.Species,
		"age":        s.Age,
		"health":     string(s.Health),
		"image_url":  s.ImageURL,
		"care_notes": s.CareNotes,
	})
	if err != nil {
		return err
	}
	*s = *row
	return nil
}

func (r *SpecimenRepository) GetByID(ctx context.Context, id string) (*entity.Specimen, error) {
	return SelectOne[entity.Specimen](ctx, r.pool, tableSpecimens, Query{Filters: []Filter{Eq("id", id)}})
}

func (r *SpecimenRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Specimen, error) {
	if len(ids) == 0 {
		return []entity.Specimen{}, nil
	}
	return SelectAll[entity.Specimen](ctx, r.pool, tableSpecimens, Query{Filters: []Filter{In("id", ids)}})
}

func (r *SpecimenRepository) ListAll(ctx context.Context, limit int) ([]entity.Specimen, error) {
	return SelectAll[entity.Specimen](ctx, r.pool, tableSpecimens, Query{Order: newestFirst, Limit: limit})
}

func (r *SpecimenRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Specimen, error) {
	return SelectAll[entity.Specimen](ctx, r.pool, tableSpecimens, Query{
		Filters: []Filter{Eq("user_id", ownerID)},
		Order:   newestFirst,
	})
}

func (r *SpecimenRepository) Search(ctx context.Context, query string, limit int) ([]entity.Specimen, error) {
	return SelectAll[entity.Specimen](ctx, r.pool, tableSpecimens, Query{
		AnyOf: []Filter{Contains("name", query), Contains("species", query)},
		Order: newestFirst,
		Limit: limit,
	})
}

func (r *SpecimenRepository) Update(ctx context.Context, id, ownerID string, patch entity.SpecimenPatch) (*entity.Specimen, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return SelectOne[entity.Specimen](ctx, r.pool, tableSpecimens, Query{Filters: []Filter{Eq("id", id), Eq("user_id", ownerID)}})
	}
	cols["updated_at"] = time.Now().UTC()
	return UpdateReturning[entity.Specimen](ctx, r.pool, tableSpecimens, cols, Eq("id", id), Eq("user_id", ownerID))
}

func (r *SpecimenRepository) Delete(ctx context.Context, id, ownerID string) error {
	_, err := Delete(ctx, r.pool, tableSpecimens, Eq("id", id), Eq("user_id", ownerID))
	return err
}

var _ repository.SpecimenRepository = (*SpecimenRepository)(nil)
