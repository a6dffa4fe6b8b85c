package repository

import (
	"context"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

// PostRepository defines operations on the bonsai_posts relation.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Post, error)
	// ListVisible returns posts visible to viewerID (empty for anonymous), most recent activity first.
	ListVisible(ctx context.Context, viewerID string, limit int) ([]entity.Post, error)
	ListBySpecimen(ctx context.Context, specimenID string) ([]entity.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]entity.Post, error)
	Update(ctx context.Context, id, authorID string, patch entity.PostPatch) (*entity.Post, error)
	Delete(ctx context.Context, id, authorID string) error
	DeleteBySpecimen(ctx context.Context, specimenID string) error
}

// CommentRepository defines operations on the comments relation.
type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// ListByPost returns every comment of a post, deleted ones included, oldest first.
	ListByPost(ctx context.Context, postID string) ([]entity.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*entity.Comment, error)
	SoftDelete(ctx context.Context, id string) error
	// CountActiveByPosts counts non-deleted comments per post id.
	CountActiveByPosts(ctx context.Context, postIDs []string) (map[string]int, error)
}
