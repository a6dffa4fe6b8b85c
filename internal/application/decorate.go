package application

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/visibility"
)

// profilesByID loads the given profiles with one batched query.
func (c *core) profilesByID(ctx context.Context, ids []string) (map[string]entity.Profile, error) {
	ids = lo.Uniq(lo.Filter(ids, func(id string, _ int) bool { return id != "" }))
	if len(ids) == 0 {
		return map[string]entity.Profile{}, nil
	}
	rows, err := c.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return lo.KeyBy(rows, func(p entity.Profile) string { return p.ID }), nil
}

func publicRef(p entity.Profile, ok bool) *entity.Profile {
	if !ok {
		return nil
	}
	v := p.PublicView()
	return &v
}

// withOwners attaches owner profiles and drops specimens viewerID may not see.
func (c *core) withOwners(ctx context.Context, specimens []entity.Specimen, viewerID string) ([]entity.Specimen, error) {
	owners, err := c.profilesByID(ctx, lo.Map(specimens, func(s entity.Specimen, _ int) string { return s.UserID }))
	if err != nil {
		return nil, err
	}
	for i := range specimens {
		p, ok := owners[specimens[i].UserID]
		specimens[i].Owner = publicRef(p, ok)
	}
	return visibility.FilterVisibleSpecimens(specimens, viewerID), nil
}

// decoratePosts attaches author, specimen, viewer like state and comment
// count, then drops what viewerID may not see. Order is preserved.
func (c *core) decoratePosts(ctx context.Context, posts []entity.Post, viewerID string) ([]entity.Post, error) {
	if len(posts) == 0 {
		return []entity.Post{}, nil
	}
	postIDs := lo.Map(posts, func(p entity.Post, _ int) string { return p.ID })
	specimenIDs := lo.Uniq(lo.Map(posts, func(p entity.Post, _ int) string { return p.SpecimenID }))

	var (
		authors   map[string]entity.Profile
		specimens map[string]entity.Specimen
		liked     map[string]bool
		counts    map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = c.profilesByID(gctx, lo.Map(posts, func(p entity.Post, _ int) string { return p.UserID }))
		return err
	})
	g.Go(func() error {
		rows, err := c.Specimens.GetByIDs(gctx, specimenIDs)
		specimens = lo.KeyBy(rows, func(s entity.Specimen) string { return s.ID })
		return err
	})
	g.Go(func() error {
		var err error
		liked, err = c.Likes.LikedPosts(gctx, viewerID, postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = c.Comments.CountActiveByPosts(gctx, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]entity.Post, len(posts))
	for i, p := range posts {
		a, ok := authors[p.UserID]
		p.Author = publicRef(a, ok)
		if s, ok := specimens[p.SpecimenID]; ok {
			s.Owner = p.Author
			p.Specimen = &s
		}
		p.IsLiked = liked[p.ID]
		p.Comments = counts[p.ID]
		out[i] = p
	}
	return visibility.FilterVisiblePosts(out, viewerID), nil
}

func (c *core) decoratePost(ctx context.Context, p entity.Post, viewerID string) (*entity.Post, bool, error) {
	out, err := c.decoratePosts(ctx, []entity.Post{p}, viewerID)
	if err != nil || len(out) == 0 {
		return nil, false, err
	}
	return &out[0], true, nil
}
