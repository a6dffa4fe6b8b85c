package application

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	repo "github.com/oksasatya/bonsai-buddy/internal/domain/repository"
	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
	mailtpl "github.com/oksasatya/bonsai-buddy/pkg/mailer/templates"
	"github.com/oksasatya/bonsai-buddy/pkg/validation"
)

// Repos bundles the relation-store ports.
type Repos struct {
	Users         repo.UserRepository
	Profiles      repo.ProfileRepository
	Specimens     repo.SpecimenRepository
	Posts         repo.PostRepository
	Comments      repo.CommentRepository
	Likes         repo.LikeRepository
	Subscriptions repo.SubscriptionRepository
}

// ContactConfig routes contact-form submissions.
type ContactConfig struct {
	From string
	To   string
}

// Deps is everything the services need. Index may be nil.
type Deps struct {
	Repos
	Objects    ObjectStore
	Mail       EmailSender
	Index      SearchIndex
	Redis      *redis.Client
	JWT        *helpers.JWTManager
	Themes     *ThemeHub
	Logger     *logrus.Logger
	Images     ImageProcessor
	Contact    ContactConfig
	Branding   mailtpl.Branding
	ResetURL   string
	SessionTTL time.Duration
}

type core struct {
	Deps
}

// Services is the application layer as seen by the HTTP handlers.
type Services struct {
	Auth          *AuthService
	Profiles      *ProfileService
	Specimens     *SpecimenService
	Posts         *PostService
	Comments      *CommentService
	Subscriptions *SubscriptionService
	Contact       *ContactService
}

func NewServices(d Deps) *Services {
	if d.Logger == nil {
		d.Logger = logrus.New()
		d.Logger.SetOutput(io.Discard)
	}
	if d.Themes == nil {
		d.Themes = NewThemeHub(d.Logger)
	}
	if d.Images.MaxBytes == 0 {
		d.Images = DefaultImageProcessor()
	}
	if d.SessionTTL == 0 {
		d.SessionTTL = 24 * time.Hour
	}
	c := &core{Deps: d}
	return &Services{
		Auth:          &AuthService{core: c},
		Profiles:      &ProfileService{core: c},
		Specimens:     &SpecimenService{core: c},
		Posts:         &PostService{core: c},
		Comments:      &CommentService{core: c},
		Subscriptions: &SubscriptionService{core: c},
		Contact:       &ContactService{core: c},
	}
}

// bestEffort logs a failed side step without failing the operation.
func (c *core) bestEffort(op, step string, err error, fields logrus.Fields) {
	if err == nil {
		return
	}
	sideStepFailures.WithLabelValues(op, step).Inc()
	c.Logger.WithError(err).WithFields(fields).WithField("op", op).Warn(step + " failed")
}

func (c *core) deleteObject(ctx context.Context, op, url string) {
	if url == "" || c.Objects == nil {
		return
	}
	key, ok := c.Objects.KeyFromURL(url)
	if !ok {
		return
	}
	c.bestEffort(op, "delete image", c.Objects.Delete(ctx, key), logrus.Fields{"key": key})
}

// releaseImage deletes url unless the specimen or one of its posts still
// references it. The announcement post shares the specimen photo.
func (c *core) releaseImage(ctx context.Context, op, url, specimenID string) {
	if sp, err := c.Specimens.GetByID(ctx, specimenID); err == nil && sp.ImageURL == url {
		return
	}
	posts, err := c.Posts.ListBySpecimen(ctx, specimenID)
	if err != nil {
		c.bestEffort(op, "check image references", err, logrus.Fields{"specimen_id": specimenID})
		return
	}
	for _, p := range posts {
		if p.ImageURL == url {
			return
		}
	}
	c.deleteObject(ctx, op, url)
}

// validate runs struct tag validation and maps failures to a Validation error.
func validate(in any) error {
	if err := validation.Struct(in); err != nil {
		return apperror.Validation("invalid input", validation.ToDetails(err))
	}
	return nil
}
