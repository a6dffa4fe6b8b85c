package entity

import "time"

// Comment is a row of the comments relation. Deleted comments keep their id and
// parent so replies stay attached; their content is cleared.
type Comment struct {
	ID              string     `db:"id"`
	PostID          string     `db:"post_id"`
	UserID          string     `db:"user_id"`
	ParentCommentID *string    `db:"parent_comment_id"`
	Content         string     `db:"content"`
	IsDeleted       bool       `db:"is_deleted"`
	EditedAt        *time.Time `db:"edited_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`

	Author *Profile `db:"-"`
}
