package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/repository"
	"github.com/oksasatya/bonsai-buddy/internal/domain/visibility"
)

func limited[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func sortSpecimensNewest(rows []entity.Specimen) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}

func sortPostsNewest(rows []entity.Post) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}

type SpecimenRepository struct{ s *Store }

func NewSpecimenRepository(s *Store) *SpecimenRepository { return &SpecimenRepository{s: s} }

func (r *SpecimenRepository) Create(_ context.Context, sp *entity.Specimen) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[sp.UserID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	row := *sp
	row.ID = uuid.NewString()
	row.CreatedAt = r.s.now()
	row.UpdatedAt = row.CreatedAt
	row.Owner = nil
	r.s.specimens[row.ID] = row
	*sp = row
	return nil
}

func (r *SpecimenRepository) GetByID(_ context.Context, id string) (*entity.Specimen, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.specimens[id]
	if !ok {
		return nil, apperror.NotFound("specimen not found")
	}
	return &sp, nil
}

func (r *SpecimenRepository) GetByIDs(_ context.Context, ids []string) ([]entity.Specimen, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Specimen{}
	for _, id := range ids {
		if sp, ok := r.s.specimens[id]; ok {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (r *SpecimenRepository) collect(keep func(entity.Specimen) bool, limit int) []entity.Specimen {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Specimen{}
	for _, sp := range r.s.specimens {
		if keep(sp) {
			out = append(out, sp)
		}
	}
	sortSpecimensNewest(out)
	return limited(out, limit)
}

func (r *SpecimenRepository) ListAll(_ context.Context, limit int) ([]entity.Specimen, error) {
	return r.collect(func(entity.Specimen) bool { return true }, limit), nil
}

func (r *SpecimenRepository) ListByOwner(_ context.Context, ownerID string) ([]entity.Specimen, error) {
	return r.collect(func(sp entity.Specimen) bool { return sp.UserID == ownerID }, 0), nil
}

func (r *SpecimenRepository) Search(_ context.Context, query string, limit int) ([]entity.Specimen, error) {
	q := strings.ToLower(query)
	return r.collect(func(sp entity.Specimen) bool {
		return strings.Contains(strings.ToLower(sp.Name), q) || strings.Contains(strings.ToLower(sp.Species), q)
	}, limit), nil
}

func (r *SpecimenRepository) Update(_ context.Context, id, ownerID string, patch entity.SpecimenPatch) (*entity.Specimen, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.specimens[id]
	if !ok || sp.UserID != ownerID {
		return nil, apperror.NotFound("specimen not found")
	}
	patch.Apply(&sp)
	sp.UpdatedAt = r.s.now()
	r.s.specimens[id] = sp
	return &sp, nil
}

func (r *SpecimenRepository) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sp, ok := r.s.specimens[id]; ok && sp.UserID == ownerID {
		r.s.deleteSpecimenLocked(id)
	}
	return nil
}

type PostRepository struct{ s *Store }

func NewPostRepository(s *Store) *PostRepository { return &PostRepository{s: s} }

func (r *PostRepository) Create(_ context.Context, p *entity.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specimens[p.SpecimenID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[p.UserID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	row := *p
	row.ID = uuid.NewString()
	row.Likes = 0
	row.EditedAt = nil
	row.CreatedAt = r.s.now()
	row.UpdatedAt = row.CreatedAt
	row.Specimen, row.Author, row.IsLiked, row.Comments = nil, nil, false, 0
	r.s.posts[row.ID] = row
	*p = row
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperror.NotFound("post not found")
	}
	return &p, nil
}

func (r *PostRepository) GetByIDs(_ context.Context, ids []string) ([]entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Post{}
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PostRepository) ListVisible(_ context.Context, viewerID string, limit int) ([]entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Post{}
	for _, p := range r.s.posts {
		withAuthor := p
		if a, ok := r.s.profiles[p.UserID]; ok {
			withAuthor.Author = &a
		}
		if visibility.CanViewPost(withAuthor, viewerID) {
			out = append(out, p)
		}
	}
	visibility.SortFeed(out)
	return limited(out, limit), nil
}

func (r *PostRepository) list(keep func(entity.Post) bool) []entity.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortPostsNewest(out)
	return out
}

func (r *PostRepository) ListBySpecimen(_ context.Context, specimenID string) ([]entity.Post, error) {
	return r.list(func(p entity.Post) bool { return p.SpecimenID == specimenID }), nil
}

func (r *PostRepository) ListByAuthor(_ context.Context, authorID string) ([]entity.Post, error) {
	return r.list(func(p entity.Post) bool { return p.UserID == authorID }), nil
}

func (r *PostRepository) Update(_ context.Context, id, authorID string, patch entity.PostPatch) (*entity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.UserID != authorID {
		return nil, apperror.NotFound("post not found")
	}
	patch.Apply(&p)
	p.UpdatedAt = r.s.now()
	r.s.posts[id] = p
	return &p, nil
}

func (r *PostRepository) Delete(_ context.Context, id, authorID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.posts[id]; ok && p.UserID == authorID {
		r.s.deletePostLocked(id)
	}
	return nil
}

func (r *PostRepository) DeleteBySpecimen(_ context.Context, specimenID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.posts {
		if p.SpecimenID == specimenID {
			r.s.deletePostLocked(id)
		}
	}
	return nil
}

type CommentRepository struct{ s *Store }

func NewCommentRepository(s *Store) *CommentRepository { return &CommentRepository{s: s} }

func (r *CommentRepository) Create(_ context.Context, c *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[c.PostID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if _, ok := r.s.profiles[c.UserID]; !ok {
		return apperror.NotFound("referenced row not found")
	}
	if c.ParentCommentID != nil {
		if _, ok := r.s.comments[*c.ParentCommentID]; !ok {
			return apperror.NotFound("referenced row not found")
		}
	}
	row := *c
	row.ID = uuid.NewString()
	row.IsDeleted = false
	row.EditedAt = nil
	row.CreatedAt = r.s.now()
	row.UpdatedAt = row.CreatedAt
	row.Author = nil
	r.s.comments[row.ID] = row
	*c = row
	return nil
}

func (r *CommentRepository) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment not found")
	}
	return &c, nil
}

func (r *CommentRepository) ListByPost(_ context.Context, postID string) ([]entity.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Comment{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CommentRepository) UpdateContent(_ context.Context, id, content string) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok || c.IsDeleted {
		return nil, apperror.NotFound("comment not found")
	}
	now := r.s.now()
	c.Content = content
	c.EditedAt = &now
	c.UpdatedAt = now
	r.s.comments[id] = c
	return &c, nil
}

func (r *CommentRepository) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return apperror.NotFound("comment not found")
	}
	c.IsDeleted = true
	c.Content = ""
	c.UpdatedAt = r.s.now()
	r.s.comments[id] = c
	return nil
}

func (r *CommentRepository) CountActiveByPosts(_ context.Context, postIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := map[string]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	out := map[string]int{}
	for _, c := range r.s.comments {
		if wanted[c.PostID] && !c.IsDeleted {
			out[c.PostID]++
		}
	}
	return out, nil
}

var (
	_ repository.SpecimenRepository = (*SpecimenRepository)(nil)
	_ repository.PostRepository     = (*PostRepository)(nil)
	_ repository.CommentRepository  = (*CommentRepository)(nil)
)
