package application

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/internal/domain/visibility"
)

// SearchLimit caps every search endpoint.
const SearchLimit = 20

type ProfileService struct {
	*core
}

type UpdateProfileInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=120"`
}

// UserPage is what a visitor sees on someone's page. Specimens and Posts are
// empty when the account is private and the viewer is not its owner.
type UserPage struct {
	Profile        entity.Profile    `json:"profile"`
	ContentVisible bool              `json:"content_visible"`
	Specimens      []entity.Specimen `json:"specimens"`
	Posts          []entity.Post     `json:"posts"`
}

func (s *ProfileService) Me(ctx context.Context, v Viewer) (*entity.Profile, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	return s.Profiles.GetByID(ctx, v.UserID)
}

func (s *ProfileService) update(ctx context.Context, op string, v Viewer, patch entity.ProfilePatch) (*entity.Profile, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	p, err := s.Profiles.Update(ctx, v.UserID, patch)
	if err != nil {
		return nil, err
	}
	if s.Index != nil {
		s.bestEffort(op, "index profile", s.Index.IndexProfile(ctx, *p), logrus.Fields{"user_id": p.ID})
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, v Viewer, in UpdateProfileInput) (*entity.Profile, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	return s.update(ctx, "update_profile", v, entity.ProfilePatch{Name: in.Name})
}

// UploadAvatar stores a new avatar and removes the previous one.
func (s *ProfileService) UploadAvatar(ctx context.Context, v Viewer, img *ImageUpload) (*entity.Profile, error) {
	if err := v.require(); err != nil {
		return nil, err
	}
	if err := s.Images.Validate(img); err != nil {
		return nil, err
	}
	current, err := s.Profiles.GetByID(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	url, err := s.storeImage(ctx, "avatars", v.UserID, img)
	if err != nil {
		return nil, err
	}
	p, err := s.update(ctx, "upload_avatar", v, entity.ProfilePatch{Avatar: &url})
	if err != nil {
		return nil, err
	}
	if current.Avatar != nil {
		s.deleteObject(ctx, "upload_avatar", *current.Avatar)
	}
	return p, nil
}

func (s *ProfileService) Preferences(ctx context.Context, v Viewer) (entity.Preferences, error) {
	p, err := s.Me(ctx, v)
	if err != nil {
		return entity.Preferences{}, err
	}
	return p.Preferences(), nil
}

// SetTheme stores the theme and broadcasts it to other sessions.
func (s *ProfileService) SetTheme(ctx context.Context, v Viewer, theme string) (entity.Preferences, error) {
	t := entity.Theme(strings.ToLower(strings.TrimSpace(theme)))
	if !t.Valid() {
		return entity.Preferences{}, apperror.Validation("invalid theme", map[string]string{"theme": "must be one of: light dark"})
	}
	p, err := s.update(ctx, "set_theme", v, entity.ProfilePatch{Theme: &t})
	if err != nil {
		return entity.Preferences{}, err
	}
	s.Themes.Publish(ctx, ThemeChange{UserID: p.ID, Theme: p.Theme})
	return p.Preferences(), nil
}

func (s *ProfileService) SetPrivacy(ctx context.Context, v Viewer, private bool) (entity.Preferences, error) {
	p, err := s.update(ctx, "set_privacy", v, entity.ProfilePatch{IsPrivate: &private})
	if err != nil {
		return entity.Preferences{}, err
	}
	return p.Preferences(), nil
}

func (s *ProfileService) SetEmailPreferences(ctx context.Context, v Viewer, prefs entity.EmailPreferences) (entity.Preferences, error) {
	p, err := s.update(ctx, "set_email_preferences", v, entity.ProfilePatch{EmailPreferences: &prefs})
	if err != nil {
		return entity.Preferences{}, err
	}
	return p.Preferences(), nil
}

func (s *ProfileService) SetNotificationSettings(ctx context.Context, v Viewer, settings entity.NotificationSettings) (entity.Preferences, error) {
	p, err := s.update(ctx, "set_notification_settings", v, entity.ProfilePatch{NotificationSettings: &settings})
	if err != nil {
		return entity.Preferences{}, err
	}
	return p.Preferences(), nil
}

// UserPage loads a profile with its collection and posts, applying account
// privacy and per-post visibility.
func (s *ProfileService) UserPage(ctx context.Context, v Viewer, userID string) (*UserPage, error) {
	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	page := &UserPage{Profile: *p, Specimens: []entity.Specimen{}, Posts: []entity.Post{}}
	if v.UserID != p.ID {
		page.Profile = p.PublicView()
	}
	if !visibility.CanViewProfileContent(*p, v.UserID) {
		return page, nil
	}
	page.ContentVisible = true

	var (
		specimens []entity.Specimen
		posts     []entity.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		specimens, err = s.Specimens.ListByOwner(gctx, p.ID)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.Posts.ListByAuthor(gctx, p.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if page.Specimens, err = s.withOwners(ctx, specimens, v.UserID); err != nil {
		return nil, err
	}
	if page.Posts, err = s.decoratePosts(ctx, posts, v.UserID); err != nil {
		return nil, err
	}
	return page, nil
}

// SearchUsers finds public profiles by name, name ascending. The search index
// is used when configured; the relation store answers otherwise or when the
// index is unreachable.
func (s *ProfileService) SearchUsers(ctx context.Context, query string) ([]entity.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Profile{}, nil
	}
	var (
		rows []entity.Profile
		err  error
	)
	if s.Index != nil {
		var ids []string
		ids, err = s.Index.SearchProfiles(ctx, query, SearchLimit)
		if err == nil {
			rows, err = s.Profiles.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			rows = lo.Filter(rows, func(p entity.Profile, _ int) bool { return !p.IsPrivate })
		} else {
			s.bestEffort("search_users", "query index", err, logrus.Fields{"q": query})
		}
	}
	if s.Index == nil || err != nil {
		rows, err = s.Profiles.SearchPublic(ctx, query, SearchLimit)
		if err != nil {
			return nil, err
		}
	}
	slices.SortFunc(rows, func(a, b entity.Profile) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return lo.Map(rows, func(p entity.Profile, _ int) entity.Profile { return p.PublicView() }), nil
}

// isNotFound reports a missing row so callers can treat deletes as no-ops.
func isNotFound(err error) bool { return errors.Is(err, apperror.ErrNotFound) }
