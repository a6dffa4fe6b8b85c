package application

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/thread"
	"github.com/oksasatya/bonsai-buddy/internal/domain/visibility"
)

type CommentService struct {
	*core
}

type CreateCommentInput struct {
	Content         string  `json:"content" validate:"required,max=2000"`
	ParentCommentID *string `json:"parent_comment_id" validate:"omitempty,uuid"`
}

// visiblePost loads a post and hides it from viewers who may not see it.
func (s *CommentService) visiblePost(ctx context.Context, v Viewer, postID string) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	authors, err := s.profilesByID(ctx, []string{p.UserID})
	if err != nil {
		return nil, err
	}
	p.Author = publicRef(authors[p.UserID], len(authors) > 0)
	if !visibility.CanViewPost(*p, v.UserID) {
		return nil, apperror.NotFound("post not found")
	}
	return p, nil
}

// Thread returns the comment tree of a post, every level sorted by order.
func (s *CommentService) Thread(ctx context.Context, v Viewer, postID string, order thread.SortOrder) ([]*thread.Node, error) {
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return nil, err
	}
	rows, err := s.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(rows, func(c entity.Comment, _ int) string { return c.ID })

	var (
		authors map[string]entity.Profile
		counts  map[string]int
		liked   map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = s.profilesByID(gctx, lo.Map(rows, func(c entity.Comment, _ int) string { return c.UserID }))
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.Likes.CommentLikeCounts(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = s.Likes.LikedComments(gctx, v.UserID, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range rows {
		if a, ok := authors[rows[i].UserID]; ok {
			rows[i].Author = &a
		}
	}
	nodes := thread.Build(rows, counts, liked)
	if size := thread.Size(nodes); size != len(rows) {
		s.Logger.WithFields(logrus.Fields{"post_id": postID, "rows": len(rows), "nodes": size}).
			Warn("comment rows with repeated ids dropped from thread")
	}
	thread.Sort(nodes, order)
	return nodes, nil
}

// Count is the badge number: live comments only.
func (s *CommentService) Count(ctx context.Context, v Viewer, postID string) (int, error) {
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return 0, err
	}
	counts, err := s.Comments.CountActiveByPosts(ctx, []string{postID})
	if err != nil {
		return 0, err
	}
	return counts[postID], nil
}

func (s *CommentService) Create(ctx context.Context, v Viewer, postID string, in CreateCommentInput) (*entity.Comment, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validate(in); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return nil, err
	}
	if in.ParentCommentID != nil {
		parent, err := s.Comments.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperror.Validation("parent comment belongs to another post", map[string]string{"parent_comment_id": "must be a comment on this post"})
		}
		if parent.IsDeleted {
			return nil, apperror.Validation("cannot reply to a deleted comment", nil)
		}
	}
	c := &entity.Comment{PostID: postID, UserID: v.UserID, ParentCommentID: in.ParentCommentID, Content: in.Content}
	if err := s.Comments.Create(ctx, c); err != nil {
		return nil, err
	}
	if p, err := s.Profiles.GetByID(ctx, v.UserID); err == nil {
		c.Author = p
	}
	engagementEvents.WithLabelValues("comment_created").Inc()
	return c, nil
}

// Update edits a live comment. Only its author may.
func (s *CommentService) Update(ctx context.Context, v Viewer, id, content string) (*entity.Comment, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := validate(struct {
		Content string `json:"content" validate:"required,max=2000"`
	}{content}); err != nil {
		return nil, err
	}
	c, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, apperror.Validation("cannot edit a deleted comment", nil)
	}
	if !visibility.CanEditComment(*c, v.UserID) {
		return nil, apperror.NotAuthorized("only the author can edit this comment")
	}
	return s.Comments.UpdateContent(ctx, id, content)
}

// Delete soft-deletes a comment so its replies stay in place. The comment's
// author and the post's author may delete; repeating a delete succeeds.
func (s *CommentService) Delete(ctx context.Context, v Viewer, id string) error {
	if err := v.require(); err != nil {
		return err
	}
	c, err := s.Comments.GetByID(ctx, id)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	postAuthor := ""
	if p, err := s.Posts.GetByID(ctx, c.PostID); err == nil {
		postAuthor = p.UserID
	} else if !isNotFound(err) {
		return err
	}
	if !visibility.CanModerateComment(*c, postAuthor, v.UserID) {
		return apperror.NotAuthorized("only the comment or post author can delete this comment")
	}
	if c.IsDeleted {
		return nil
	}
	return s.Comments.SoftDelete(ctx, id)
}

// Like records the viewer's like on a live comment. Liking twice is a Conflict.
func (s *CommentService) Like(ctx context.Context, v Viewer, id string) error {
	if err := v.require(); err != nil {
		return err
	}
	c, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDeleted {
		return apperror.Validation("cannot like a deleted comment", nil)
	}
	if _, err := s.visiblePost(ctx, v, c.PostID); err != nil {
		return err
	}
	if err := s.Likes.LikeComment(ctx, id, v.UserID); err != nil {
		return err
	}
	engagementEvents.WithLabelValues("comment_liked").Inc()
	return nil
}

func (s *CommentService) Unlike(ctx context.Context, v Viewer, id string) error {
	if err := v.require(); err != nil {
		return err
	}
	if err := s.Likes.UnlikeComment(ctx, id, v.UserID); err != nil {
		return err
	}
	engagementEvents.WithLabelValues("comment_unliked").Inc()
	return nil
}
