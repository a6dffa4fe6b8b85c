package entity

import "time"

// PostLike records one like per (post, user).
type PostLike struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CommentLike records one like per (comment, user).
type CommentLike struct {
	ID        string    `db:"id" json:"id"`
	CommentID string    `db:"comment_id" json:"comment_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SpecimenSubscription records a user following a specimen.
type SpecimenSubscription struct {
	ID         string    `db:"id" json:"id"`
	SpecimenID string    `db:"specimen_id" json:"specimen_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
