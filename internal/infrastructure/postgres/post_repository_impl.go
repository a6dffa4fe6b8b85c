package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

const tablePosts = "bonsai_posts"

// feedSQL applies the post visibility rule in the store so the limit counts visible rows only.
const feedSQL = `
SELECT p.*
FROM bonsai_posts p
JOIN profiles a ON a.id = p.user_id
WHERE ($1 <> '' AND p.user_id::text = $1)
   OR (p.is_public AND NOT a.is_private)
ORDER BY GREATEST(p.created_at, COALESCE(p.edited_at, p.created_at)) DESC, p.id ASC
LIMIT $2`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row, err := InsertOne[entity.Post](ctx, r.pool, tablePosts, map[string]any{
		"specimen_id": p.SpecimenID,
		"user_id":     p.UserID,
		"image_url":   p.ImageURL,
		"caption":     p.Caption,
		"is_public":   p.IsPublic,
	})
	if err != nil {
		return err
	}
	*p = *row
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	return SelectOne[entity.Post](ctx, r.pool, tablePosts, Query{Filters: []Filter{Eq("id", id)}})
}

func (r *PostRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Post, error) {
	if len(ids) == 0 {
		return []entity.Post{}, nil
	}
	return SelectAll[entity.Post](ctx, r.pool, tablePosts, Query{Filters: []Filter{In("id", ids)}})
}

func (r *PostRepository) ListVisible(ctx context.Context, viewerID string, limit int) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, feedSQL, viewerID, limit)
	if err != nil {
		return nil, mapError(err, tablePosts)
	}
	posts, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[entity.Post])
	if err != nil {
		return nil, mapError(err, tablePosts)
	}
	return posts, nil
}

func (r *PostRepository) ListBySpecimen(ctx context.Context, specimenID string) ([]entity.Post, error) {
	return SelectAll[entity.Post](ctx, r.pool, tablePosts, Query{
		Filters: []Filter{Eq("specimen_id", specimenID)},
		Order:   newestFirst,
	})
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]entity.Post, error) {
	return SelectAll[entity.Post](ctx, r.pool, tablePosts, Query{
		Filters: []Filter{Eq("user_id", authorID)},
		Order:   newestFirst,
	})
}

func (r *PostRepository) Update(ctx context.Context, id, authorID string, patch entity.PostPatch) (*entity.Post, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return SelectOne[entity.Post](ctx, r.pool, tablePosts, Query{Filters: []Filter{Eq("id", id), Eq("user_id", authorID)}})
	}
	cols["updated_at"] = time.Now().UTC()
	return UpdateReturning[entity.Post](ctx, r.pool, tablePosts, cols, Eq("id", id), Eq("user_id", authorID))
}

func (r *PostRepository) Delete(ctx context.Context, id, authorID string) error {
	_, err := Delete(ctx, r.pool, tablePosts, Eq("id", id), Eq("user_id", authorID))
	return err
}

func (r *PostRepository) DeleteBySpecimen(ctx context.Context, specimenID string) error {
	_, err := Delete(ctx, r.pool, tablePosts, Eq("specimen_id", specimenID))
	return err
}

var _ repository.PostRepository = (*PostRepository)(nil)
