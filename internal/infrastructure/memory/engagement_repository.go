package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
)

type LikeRepository struct{ s *Store }

func NewLikeRepository(s *Store) *LikeRepository { return &LikeRepository{s: s} }

func (r *LikeRepository) LikePost(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[postID]
	if !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[userID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	k := pair{postID, userID}
	if _, dup := r.s.postLikes[k]; dup {
		return apperror.Conflict("post like already exists")
	}
	r.s.postLikes[k] = entity.PostLike{ID: uuid.NewString(), PostID: postID, UserID: userID, CreatedAt: r.s.now()}
	p.Likes++
	r.s.posts[postID] = p
	return nil
}

func (r *LikeRepository) UnlikePost(_ context.Context, postID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := pair{postID, userID}
	if _, ok := r.s.postLikes[k]; !ok {
		return nil
	}
	delete(r.s.postLikes, k)
	if p, ok := r.s.posts[postID]; ok && p.Likes > 0 {
		p.Likes--
		r.s.posts[postID] = p
	}
	return nil
}

func (r *LikeRepository) LikedPosts(_ context.Context, userID string, postIDs []string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[string]bool{}
	if userID == "" {
		return out, nil
	}
	for _, id := range postIDs {
		if _, ok := r.s.postLikes[pair{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *LikeRepository) LikeComment(_ context.Context, commentID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[commentID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[userID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	k := pair{commentID, userID}
	if _, dup := r.s.commentLikes[k]; dup {
		return apperror.Conflict("comment like already exists")
	}
	r.s.commentLikes[k] = entity.CommentLike{ID: uuid.NewString(), CommentID: commentID, UserID: userID, CreatedAt: r.s.now()}
	return nil
}

func (r *LikeRepository) UnlikeComment(_ context.Context, commentID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.commentLikes, pair{commentID, userID})
	return nil
}

func (r *LikeRepository) CommentLikeCounts(_ context.Context, commentIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := map[string]bool{}
	for _, id := range commentIDs {
		wanted[id] = true
	}
	out := map[string]int{}
	for k := range r.s.commentLikes {
		if wanted[k.a] {
			out[k.a]++
		}
	}
	return out, nil
}

func (r *LikeRepository) LikedComments(_ context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[string]bool{}
	if userID == "" {
		return out, nil
	}
	for _, id := range commentIDs {
		if _, ok := r.s.commentLikes[pair{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type SubscriptionRepository struct{ s *Store }

func NewSubscriptionRepository(s *Store) *SubscriptionRepository {
	return &SubscriptionRepository{s: s}
}

func (r *SubscriptionRepository) Subscribe(_ context.Context, specimenID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specimens[specimenID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[userID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	k := pair{specimenID, userID}
	if _, dup := r.s.subs[k]; dup {
		return apperror.Conflict("specimen subscription already exists")
	}
	r.s.subs[k] = entity.SpecimenSubscription{ID: uuid.NewString(), SpecimenID: specimenID, UserID: userID, CreatedAt: r.s.now()}
	return nil
}

func (r *SubscriptionRepository) Unsubscribe(_ context.Context, specimenID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.subs, pair{specimenID, userID})
	return nil
}

func (r *SubscriptionRepository) IsSubscribed(_ context.Context, specimenID, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.subs[pair{specimenID, userID}]
	return ok, nil
}

func (r *SubscriptionRepository) CountBySpecimen(_ context.Context, specimenID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for k := range r.s.subs {
		if k.a == specimenID {
			n++
		}
	}
	return n, nil
}

func (r *SubscriptionRepository) DeleteBySpecimen(_ context.Context, specimenID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.subs {
		if k.a == specimenID {
			delete(r.s.subs, k)
		}
	}
	return nil
}

var (
	_ repository.LikeRepository         = (*LikeRepository)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepository)(nil)
)
