package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

const (
	tablePostLikes     = "post_likes"
	tableCommentLikes  = "comment_likes"
	tableSubscriptions = "specimen_subscriptions"
)

// LikeRepository keeps bonsai_posts.likes in step with post_likes inside one transaction.
type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

func (r *LikeRepository) LikePost(ctx context.Context, postID, userID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := InsertOne[entity.PostLike](ctx, tx, tablePostLikes, map[string]any{"post_id": postID, "user_id": userID}); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE bonsai_posts SET likes = likes + 1 WHERE id = $1`, postID)
		return mapError(err, tablePosts)
	})
}

func (r *LikeRepository) UnlikePost(ctx context.Context, postID, userID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		n, err := Delete(ctx, tx, tablePostLikes, Eq("post_id", postID), Eq("user_id", userID))
		if err != nil || n == 0 {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE bonsai_posts SET likes = GREATEST(likes - $2, 0) WHERE id = $1`, postID, n)
		return mapError(err, tablePosts)
	})
}

func (r *LikeRepository) LikedPosts(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}
	likes, err := SelectAll[entity.PostLike](ctx, r.pool, tablePostLikes, Query{
		Filters: []Filter{Eq("user_id", userID), In("post_id", postIDs)},
	})
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.PostID] = true
	}
	return out, nil
}

func (r *LikeRepository) LikeComment(ctx context.Context, commentID, userID string) error {
	_, err := InsertOne[entity.CommentLike](ctx, r.pool, tableCommentLikes, map[string]any{"comment_id": commentID, "user_id": userID})
	return err
}

func (r *LikeRepository) UnlikeComment(ctx context.Context, commentID, userID string) error {
	_, err := Delete(ctx, r.pool, tableCommentLikes, Eq("comment_id", commentID), Eq("user_id", userID))
	return err
}

func (r *LikeRepository) CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int, error) {
	if len(commentIDs) == 0 {
		return map[string]int{}, nil
	}
	return CountBy(ctx, r.pool, tableCommentLikes, "comment_id", Query{Filters: []Filter{In("comment_id", commentIDs)}})
}

func (r *LikeRepository) LikedComments(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	if userID == "" || len(commentIDs) == 0 {
		return out, nil
	}
	likes, err := SelectAll[entity.CommentLike](ctx, r.pool, tableCommentLikes, Query{
		Filters: []Filter{Eq("user_id", userID), In("comment_id", commentIDs)},
	})
	if err != nil {
		return nil, err
	}
	for _, l := range likes {
		out[l.CommentID] = true
	}
	return out, nil
}

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) Subscribe(ctx context.Context, specimenID, userID string) error {
	_, err := InsertOne[entity.SpecimenSubscription](ctx, r.pool, tableSubscriptions, map[string]any{"specimen_id": specimenID, "user_id": userID})
	return err
}

func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, specimenID, userID string) error {
	_, err := Delete(ctx, r.pool, tableSubscriptions, Eq("specimen_id", specimenID), Eq("user_id", userID))
	return err
}

func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, specimenID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	n, err := Count(ctx, r.pool, tableSubscriptions, Query{Filters: []Filter{Eq("specimen_id", specimenID), Eq("user_id", userID)}})
	return n > 0, err
}

func (r *SubscriptionRepository) CountBySpecimen(ctx context.Context, specimenID string) (int, error) {
	return Count(ctx, r.pool, tableSubscriptions, Query{Filters: []Filter{Eq("specimen_id", specimenID)}})
}

func (r *SubscriptionRepository) DeleteBySpecimen(ctx context.Context, specimenID string) error {
	_, err := Delete(ctx, r.pool, tableSubscriptions, Eq("specimen_id", specimenID))
	return err
}

var (
	_ repository.LikeRepository         = (*LikeRepository)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
)
