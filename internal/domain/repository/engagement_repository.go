package repository

import "context"

// LikeRepository manages post and comment likes. Inserting a duplicate like
// returns an apperror Conflict; removing an absent like is a no-op.
type LikeRepository interface {
	LikePost(ctx context.Context, postID, userID string) error
	UnlikePost(ctx context.Context, postID, userID string) error
	LikedPosts(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)

	LikeComment(ctx context.Context, commentID, userID string) error
	UnlikeComment(ctx context.Context, commentID, userID string) error
	CommentLikeCounts(ctx context.Context, commentIDs []string) (map[string]int, error)
	LikedComments(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error)
}

// SubscriptionRepository manages specimen subscriptions with the same join-row rules.
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, specimenID, userID string) error
	Unsubscribe(ctx context.Context, specimenID, userID string) error
	IsSubscribed(ctx context.Context, specimenID, userID string) (bool, error)
	CountBySpecimen(ctx context.Context, specimenID string) (int, error)
	DeleteBySpecimen(ctx context.Context, specimenID string) error
}
