package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return min(n, MaxListLimit)
}

type SpecimenService struct {
	*core
}

type AddSpecimenInput struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Species   string  `json:"species" validate:"required,max=120"`
	Age       int     `json:"age" validate:"gte=1,lte=5000"`
	Health    string  `json:"health" validate:"required,health"`
	CareNotes *string `json:"care_notes" validate:"omitempty,max=4000"`
}

// AddSpecimenResult carries the created specimen and the announcement post.
type AddSpecimenResult struct {
	Specimen entity.Specimen `json:"specimen"`
	Post     entity.Post     `json:"post"`
}

func announceCaption(s entity.Specimen) string {
	return fmt.Sprintf("Just added %s (%s) to my collection!", s.Name, s.Species)
}

// Add validates everything, then uploads the photo, inserts the specimen and
// its announcement post, and indexes it. A failing step stops the ones after it.
func (s *SpecimenService) Add(ctx context.Context, v Viewer, in AddSpecimenInput, img *ImageUpload) (*AddSpecimenResult, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Species = strings.TrimSpace(in.Species)
	in.Health = strings.TrimSpace(in.Health)
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.Images.Validate(img); err != nil {
		return nil, err
	}

	url, err := s.storeImage(ctx, "specimens", v.UserID, img)
	if err != nil {
		return nil, err
	}
	sp := &entity.Specimen{
		UserID:    v.UserID,
		Name:      in.Name,
		Species:   in.Species,
		Age:       in.Age,
		Health:    entity.HealthStatus(in.Health),
		ImageURL:  url,
		CareNotes: in.CareNotes,
	}
	if err := s.Specimens.Create(ctx, sp); err != nil {
		return nil, err
	}
	caption := announceCaption(*sp)
	post := &entity.Post{SpecimenID: sp.ID, UserID: v.UserID, ImageURL: url, Caption: &caption, IsPublic: true}
	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	if s.Index != nil {
		s.bestEffort("add_specimen", "index specimen", s.Index.IndexSpecimen(ctx, *sp), logrus.Fields{"specimen_id": sp.ID})
	}
	engagementEvents.WithLabelValues("specimen_added").Inc()
	s.Logger.WithFields(logrus.Fields{"specimen_id": sp.ID, "user_id": v.UserID}).Info("specimen added")
	return &AddSpecimenResult{Specimen: *sp, Post: *post}, nil
}

// Get returns a specimen the viewer may see; hidden ones read as not found.
func (s *SpecimenService) Get(ctx context.Context, v Viewer, id string) (*entity.Specimen, error) {
	sp, err := s.Specimens.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := s.withOwners(ctx, []entity.Specimen{*sp}, v.UserID)
	if err != nil {
		return nil, err
	}
	if len(visible) == 0 {
		return nil, apperror.NotFound("specimen not found")
	}
	return &visible[0], nil
}

func (s *SpecimenService) List(ctx context.Context, v Viewer, limit int) ([]entity.Specimen, error) {
	rows, err := s.Specimens.ListAll(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, rows, v.UserID)
}

// Search matches name or species. Specimens of private accounts are only
// returned to their owner.
func (s *SpecimenService) Search(ctx context.Context, v Viewer, query string) ([]entity.Specimen, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Specimen{}, nil
	}
	var (
		rows []entity.Specimen
		err  error
	)
	if s.Index != nil {
		var ids []string
		if ids, err = s.Index.SearchSpecimens(ctx, query, SearchLimit); err == nil {
			if rows, err = s.Specimens.GetByIDs(ctx, ids); err != nil {
				return nil, err
			}
		} else {
			s.bestEffort("search_specimens", "query index", err, logrus.Fields{"q": query})
		}
	}
	if s.Index == nil || err != nil {
		if rows, err = s.Specimens.Search(ctx, query, SearchLimit); err != nil {
			return nil, err
		}
	}
	return s.withOwners(ctx, rows, v.UserID)
}

// owned loads id and checks the viewer owns it.
func (s *SpecimenService) owned(ctx context.Context, v Viewer, id string) (*entity.Specimen, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	sp, err := s.Specimens.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.UserID != v.UserID {
		return nil, apperror.NotAuthorized("only the owner can change this specimen")
	}
	return sp, nil
}

// Update applies a partial patch and optionally replaces the photo.
func (s *SpecimenService) Update(ctx context.Context, v Viewer, id string, patch entity.SpecimenPatch, img *ImageUpload) (*entity.Specimen, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	patch.ImageURL = nil
	if err := validate(patch); err != nil {
		return nil, err
	}
	if img.Present() {
		if err := s.Images.Validate(img); err != nil {
			return nil, err
		}
	}
	current, err := s.owned(ctx, v, id)
	if err != nil {
		return nil, err
	}
	if img.Present() {
		url, err := s.storeImage(ctx, "specimens", v.UserID, img)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}
	updated, err := s.Specimens.Update(ctx, id, v.UserID, patch)
	if err != nil {
		return nil, err
	}
	if patch.ImageURL != nil {
		s.releaseImage(ctx, "update_specimen", current.ImageURL, id)
	}
	if s.Index != nil {
		s.bestEffort("update_specimen", "index specimen", s.Index.IndexSpecimen(ctx, *updated), logrus.Fields{"specimen_id": id})
	}
	return updated, nil
}

// Delete removes a specimen with its posts and subscriptions. Deleting a
// specimen that no longer exists succeeds.
func (s *SpecimenService) Delete(ctx context.Context, v Viewer, id string) error {
	sp, err := s.owned(ctx, v, id)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	posts, err := s.Posts.ListBySpecimen(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Posts.DeleteBySpecimen(ctx, id); err != nil {
		return err
	}
	if err := s.Subscriptions.DeleteBySpecimen(ctx, id); err != nil {
		return err
	}
	if err := s.Specimens.Delete(ctx, id, v.UserID); err != nil {
		return err
	}

	images := lo.Uniq(append(lo.Map(posts, func(p entity.Post, _ int) string { return p.ImageURL }), sp.ImageURL))
	for _, url := range images {
		s.deleteObject(ctx, "delete_specimen", url)
	}
	if s.Index != nil {
		s.bestEffort("delete_specimen", "unindex specimen", s.Index.DeleteSpecimen(ctx, id), logrus.Fields{"specimen_id": id})
	}
	s.Logger.WithFields(logrus.Fields{"specimen_id": id, "posts": len(posts)}).Info("specimen deleted")
	return nil
}

// Timeline lists a specimen's posts, newest first, filtered for the viewer.
func (s *SpecimenService) Timeline(ctx context.Context, v Viewer, id string) ([]entity.Post, error) {
	if _, err := s.Get(ctx, v, id); err != nil {
		return nil, err
	}
	rows, err := s.Posts.ListBySpecimen(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decoratePosts(ctx, rows, v.UserID)
}
