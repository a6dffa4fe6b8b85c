package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

type PostService struct {
	*core
}

type CreatePostInput struct {
	SpecimenID string  `json:"specimen_id" validate:"required,uuid"`
	Caption    *string `json:"caption" validate:"omitempty,max=2000"`
	IsPublic   *bool   `json:"is_public"`
}

type UpdatePostInput struct {
	Caption *string `json:"caption" validate:"omitempty,max=2000"`
}

// LikeState is the viewer's like status after a toggle.
type LikeState struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// Feed returns the posts visible to the viewer, most recent activity first.
func (s *PostService) Feed(ctx context.Context, v Viewer, limit int) ([]entity.Post, error) {
	rows, err := s.Posts.ListVisible(ctx, v.UserID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.decoratePosts(ctx, rows, v.UserID)
}

// Get returns a post the viewer may see; hidden posts read as not found.
func (s *PostService) Get(ctx context.Context, v Viewer, id string) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, ok, err := s.decoratePost(ctx, *p, v.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("post not found")
	}
	return out, nil
}

// Create adds a timeline post to a specimen the viewer owns.
func (s *PostService) Create(ctx context.Context, v Viewer, in CreatePostInput, img *ImageUpload) (*entity.Post, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	in.SpecimenID = strings.TrimSpace(in.SpecimenID)
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.Images.Validate(img); err != nil {
		return nil, err
	}
	sp, err := s.Specimens.GetByID(ctx, in.SpecimenID)
	if err != nil {
		return nil, err
	}
	if sp.UserID != v.UserID {
		return nil, apperror.NotAuthorized("only the owner can post about this specimen")
	}
	url, err := s.storeImage(ctx, "posts", v.UserID, img)
	if err != nil {
		return nil, err
	}
	p := &entity.Post{SpecimenID: sp.ID, UserID: v.UserID, ImageURL: url, Caption: in.Caption, IsPublic: true}
	if in.IsPublic != nil {
		p.IsPublic = *in.IsPublic
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	engagementEvents.WithLabelValues("post_created").Inc()
	return s.Get(ctx, v, p.ID)
}

func (s *PostService) authored(ctx context.Context, v Viewer, id string) (*entity.Post, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != v.UserID {
		return nil, apperror.NotAuthorized("only the author can change this post")
	}
	return p, nil
}

// Update edits the caption and/or photo and marks the post edited, which
// moves it back to the top of the feed.
func (s *PostService) Update(ctx context.Context, v Viewer, id string, in UpdatePostInput, img *ImageUpload) (*entity.Post, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	if img.Present() {
		if err := s.Images.Validate(img); err != nil {
			return nil, err
		}
	}
	current, err := s.authored(ctx, v, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	patch := entity.PostPatch{Caption: in.Caption, EditedAt: &now}
	if img.Present() {
		url, err := s.storeImage(ctx, "posts", v.UserID, img)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}
	if _, err := s.Posts.Update(ctx, id, v.UserID, patch); err != nil {
		return nil, err
	}
	if patch.ImageURL != nil && current.ImageURL != *patch.ImageURL {
		s.releaseImage(ctx, "update_post", current.ImageURL, current.SpecimenID)
	}
	return s.Get(ctx, v, id)
}

func (s *PostService) SetPrivacy(ctx context.Context, v Viewer, id string, public bool) (*entity.Post, error) {
	if _, err := s.authored(ctx, v, id); err != nil {
		return nil, err
	}
	if _, err := s.Posts.Update(ctx, id, v.UserID, entity.PostPatch{IsPublic: &public}); err != nil {
		return nil, err
	}
	return s.Get(ctx, v, id)
}

// Delete removes a post with its likes and comments. A missing post is not an error.
func (s *PostService) Delete(ctx context.Context, v Viewer, id string) error {
	p, err := s.authored(ctx, v, id)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.Posts.Delete(ctx, id, v.UserID); err != nil {
		return err
	}
	s.releaseImage(ctx, "delete_post", p.ImageURL, p.SpecimenID)
	s.Logger.WithFields(logrus.Fields{"post_id": id, "user_id": v.UserID}).Info("post deleted")
	return nil
}

// Like records the viewer's like. Liking twice is a Conflict.
func (s *PostService) Like(ctx context.Context, v Viewer, id string) (LikeState, error) {
	if err := v.require(); err != nil {
		return LikeState{}, err
	}
	if _, err := s.Get(ctx, v, id); err != nil {
		return LikeState{}, err
	}
	if err := s.Likes.LikePost(ctx, id, v.UserID); err != nil {
		return LikeState{}, err
	}
	engagementEvents.WithLabelValues("post_liked").Inc()
	return s.likeState(ctx, id, true)
}

// Unlike removes the viewer's like; removing an absent like succeeds.
func (s *PostService) Unlike(ctx context.Context, v Viewer, id string) (LikeState, error) {
	if err := v.require(); err != nil {
		return LikeState{}, err
	}
	if err := s.Likes.UnlikePost(ctx, id, v.UserID); err != nil {
		return LikeState{}, err
	}
	engagementEvents.WithLabelValues("post_unliked").Inc()
	return s.likeState(ctx, id, false)
}

func (s *PostService) likeState(ctx context.Context, id string, liked bool) (LikeState, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{Liked: liked, Likes: p.Likes}, nil
}
