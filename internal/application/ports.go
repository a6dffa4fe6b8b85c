package application

import (
	"context"
	"io"

	"github.com/oksasatya/bonsai-buddy/internal/domain/entity"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
)

// ObjectStore holds uploaded images.
type ObjectStore interface {
	// Upload stores r under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL recovers the key of a URL previously returned by Upload.
	KeyFromURL(url string) (string, bool)
}

// EmailSender delivers one message and returns the provider's id for it.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// SearchIndex is an optional full-text index over profiles and specimens.
// Search methods return matching ids, best match first.
type SearchIndex interface {
	IndexProfile(ctx context.Context, p entity.Profile) error
	IndexSpecimen(ctx context.Context, s entity.Specimen) error
	DeleteSpecimen(ctx context.Context, id string) error
	SearchProfiles(ctx context.Context, query string, limit int) ([]string, error)
	SearchSpecimens(ctx context.Context, query string, limit int) ([]string, error)
}
