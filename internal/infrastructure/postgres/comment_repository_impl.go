package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

const tableComments = "comments"

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	row, err := InsertOne[entity.Comment](ctx, r.pool, tableComments, map[string]any{
		"post_id":           c.PostID,
		"user_id":           c.UserID,
		"parent_comment_id": c.ParentCommentID,
		"content":           c.Content,
	})
	if err != nil {
		return err
	}
	*c = *row
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	return SelectOne[entity.Comment](ctx, r.pool, tableComments, Query{Filters: []Filter{Eq("id", id)}})
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]entity.Comment, error) {
	return SelectAll[entity.Comment](ctx, r.pool, tableComments, Query{
		Filters: []Filter{Eq("post_id", postID)},
		Order:   []Order{Asc("created_at"), Asc("id")},
	})
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id, content string) (*entity.Comment, error) {
	now := time.Now().UTC()
	return UpdateReturning[entity.Comment](ctx, r.pool, tableComments,
		map[string]any{"content": content, "edited_at": now, "updated_at": now},
		Eq("id", id), Is("is_deleted", false))
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id string) error {
	_, err := UpdateReturning[entity.Comment](ctx, r.pool, tableComments,
		map[string]any{"is_deleted": true, "content": "", "updated_at": time.Now().UTC()},
		Eq("id", id))
	return err
}

func (r *CommentRepository) CountActiveByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	if len(postIDs) == 0 {
		return map[string]int{}, nil
	}
	return CountBy(ctx, r.pool, tableComments, "post_id", Query{
		Filters: []Filter{In("post_id", postIDs), Is("is_deleted", false)},
	})
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
